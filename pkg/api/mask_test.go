package api

import "testing"

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		showLen int
		want    string
	}{
		{name: "short string", value: "lZSwaQ", showLen: 5, want: hidingMask},
		{name: "just long enough", value: "ZWvaGS5SzNGaR990f", showLen: 4, want: "ZWva" + hidingMask + "990f"},
		{name: "wide show window", value: "KZneJzgRzdlWcUjJj", showLen: 10, want: hidingMask},
		{name: "window beyond length", value: "g5imzEr7TPcBG47fa", showLen: 20, want: hidingMask},
		{name: "narrow show window", value: "In8y4eGughjBNSqEGPcqzejToVUT3OA4q5", showLen: 2, want: "In" + hidingMask + "q5"},
		{name: "zero show length", value: "Z8pZom5EVbRZ0W5wz", showLen: 0, want: hidingMask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskSecret(tt.value, tt.showLen); got != tt.want {
				t.Errorf("maskSecret(%q, %d) = %q, want %q", tt.value, tt.showLen, got, tt.want)
			}
		})
	}
}

func TestHidePrivate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "login request",
			body: `{"jsonrpc":"2.0","method":"user.login","params":{"user":"Admin","password":"zabbix"},"id":"1"}`,
			want: `{"jsonrpc":"2.0","method":"user.login","params":{"user":"Admin","password":"********"},"id":"1"}`,
		},
		{
			name: "auth field",
			body: `{"auth":"q2BTIw85kqmjtXl3zCgSSR26gwCGVFMK"}`,
			want: `{"auth":"q2BT` + hidingMask + `VFMK"}`,
		},
		{
			name: "token field",
			body: `{"token":"jZAC51wHuWdwvQnxwbP2T55vh6R5R2uW"}`,
			want: `{"token":"jZAC` + hidingMask + `R2uW"}`,
		},
		{
			name: "sessionid field",
			body: `{"sessionid":"p1xqXSf2HhYWa2ml6R5R2uWwbP2T55vh"}`,
			want: `{"sessionid":"p1xq` + hidingMask + `55vh"}`,
		},
		{
			name: "session id result",
			body: `{"jsonrpc":"2.0","result":"p1xqXSf2HhYWa2ml6R5R2uWwbP2T55vh","id":"1"}`,
			want: `{"jsonrpc":"2.0","result":"p1xq` + hidingMask + `55vh","id":"1"}`,
		},
		{
			name: "version result stays readable",
			body: `{"jsonrpc":"2.0","result":"6.0.0","id":"1"}`,
			want: `{"jsonrpc":"2.0","result":"6.0.0","id":"1"}`,
		},
		{
			name: "export result stays readable",
			body: `{"result":"zabbix_export version 6.0"}`,
			want: `{"result":"zabbix_export version 6.0"}`,
		},
		{
			name: "short result",
			body: `{"result":"10"}`,
			want: `{"result":"` + hidingMask + `"}`,
		},
		{
			name: "spaced serialization",
			body: `{"auth": "q2BTIw85kqmjtXl3zCgSSR26gwCGVFMK"}`,
			want: `{"auth": "q2BT` + hidingMask + `VFMK"}`,
		},
		{
			name: "structured result untouched",
			body: `{"result":[{"hostid":"10084"}]}`,
			want: `{"result":[{"hostid":"10084"}]}`,
		},
		{
			name: "multiple fields",
			body: `{"token":"jZAC51wHuWdwvQnxwbP2T55vh6R5R2uW","params":{"password":"HlphkcKgQKvofQHP"}}`,
			want: `{"token":"jZAC` + hidingMask + `R2uW","params":{"password":"` + hidingMask + `"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hidePrivate(tt.body); got != tt.want {
				t.Errorf("hidePrivate(%q)\n got %q\nwant %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestCutBody(t *testing.T) {
	if got := cutBody("short", 10); got != "short" {
		t.Errorf("cutBody() = %q, want unchanged input", got)
	}
	if got := cutBody("0123456789abcdef", 10); got != "0123456789..." {
		t.Errorf("cutBody() = %q, want %q", got, "0123456789...")
	}
}
