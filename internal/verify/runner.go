package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/zbx-labs/zbxkit/pkg/api"
	"github.com/zbx-labs/zbxkit/pkg/getter"
	"github.com/zbx-labs/zbxkit/pkg/log"
	"github.com/zbx-labs/zbxkit/pkg/sender"
)

// Mode is how the checks of one suite execution are scheduled.
type Mode string

const (
	// ModeSync runs checks strictly in scenario order.
	ModeSync Mode = "sync"

	// ModeAsync spreads checks over a bounded pool of goroutines.
	ModeAsync Mode = "async"
)

// DefaultWorkers bounds async-mode concurrency when the scenario does
// not set a worker count.
const DefaultWorkers = 4

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for run progress and client debug output.
func WithLogger(logger log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner executes the suites of one scenario and writes their logs.
type Runner struct {
	scenario *Scenario
	logger   log.Logger

	getter *getter.Getter
	sender *sender.Sender
	api    *api.Client
}

// NewRunner builds the protocol clients the scenario names and returns
// a runner for it.
func NewRunner(sc *Scenario, opts ...Option) (*Runner, error) {
	r := &Runner{
		scenario: sc,
		logger:   log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	gopts := []getter.Option{getter.WithLogger(r.logger)}
	if sc.Agent.Host != "" {
		gopts = append(gopts, getter.WithHost(sc.Agent.Host))
	}
	if sc.Agent.Port != 0 {
		gopts = append(gopts, getter.WithPort(sc.Agent.Port))
	}
	if sc.Agent.Timeout != 0 {
		gopts = append(gopts, getter.WithTimeout(sc.Agent.Timeout))
	}
	r.getter = getter.New(gopts...)

	sopts := []sender.Option{sender.WithLogger(r.logger)}
	if sc.Trapper.Servers != "" {
		sopts = append(sopts, sender.WithServers(sc.Trapper.Servers))
	}
	if sc.Trapper.ChunkSize > 0 {
		sopts = append(sopts, sender.WithChunkSize(sc.Trapper.ChunkSize))
	}
	snd, err := sender.New(sopts...)
	if err != nil {
		return nil, err
	}
	r.sender = snd

	aopts := []api.Option{api.WithLogger(r.logger)}
	if sc.API.URL != "" {
		aopts = append(aopts, api.WithURL(sc.API.URL))
	}
	if sc.API.Token != "" {
		aopts = append(aopts, api.WithToken(sc.API.Token))
	}
	if sc.API.User != "" {
		aopts = append(aopts, api.WithCredentials(sc.API.User, sc.API.Password))
	}
	if sc.API.Timeout != 0 {
		aopts = append(aopts, api.WithTimeout(sc.API.Timeout))
	}
	if sc.API.SkipVersionCheck {
		aopts = append(aopts, api.WithSkipVersionCheck())
	}
	r.api = api.New(aopts...)

	return r, nil
}

// Run executes every suite in both modes, writes the per-suite logs and
// the summary file, and applies the marker rule to its own logs for the
// verdict. Failing checks never abort the run; the returned error only
// covers operational problems such as an unwritable log directory.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := os.MkdirAll(r.scenario.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("verify: create log dir: %w", err)
	}

	rep := &Report{StartedAt: time.Now()}
	for _, s := range r.scenario.Suites {
		for _, mode := range []Mode{ModeSync, ModeAsync} {
			res := r.runSuite(ctx, s, mode)
			res.LogFile = filepath.Join(r.scenario.LogDir, fmt.Sprintf("%s-%s.log", s.Name, mode))
			if err := writeSuiteLog(res); err != nil {
				return nil, fmt.Errorf("verify: write suite log: %w", err)
			}
			r.logger.Info("suite finished",
				log.String("suite", s.Name),
				log.String("mode", string(mode)),
				log.Bool("passed", res.Passed),
				log.Int("failures", res.Failures))
			rep.Suites = append(rep.Suites, res)
			rep.LogFiles = append(rep.LogFiles, res.LogFile)
		}
	}
	rep.EndedAt = time.Now()

	_, err := CheckLogs(rep.LogFiles)
	rep.Passed = err == nil

	if _, err := WriteSummary(r.scenario.LogDir, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *Runner) runSuite(ctx context.Context, s Suite, mode Mode) SuiteResult {
	res := SuiteResult{
		Suite:     s.Name,
		Mode:      string(mode),
		StartedAt: time.Now(),
	}

	// The suite shares one API session across its checks, the way the
	// integration suites share a logged-in client. A failed login fails
	// the API checks but the rest of the suite still runs.
	var apiErr error
	if s.hasAPIChecks() {
		if err := r.api.Login(ctx); err != nil {
			apiErr = fmt.Errorf("login: %w", err)
		} else {
			defer func() {
				if err := r.api.Logout(ctx); err != nil {
					r.logger.Debug("logout failed", log.Err(err))
				}
			}()
		}
	}

	res.Checks = r.runChecks(ctx, s, mode, apiErr)
	res.Passed = true
	for _, c := range res.Checks {
		if !c.Passed {
			res.Passed = false
			res.Failures++
		}
	}
	res.DurationMS = time.Since(res.StartedAt).Milliseconds()
	return res
}

func (r *Runner) runChecks(ctx context.Context, s Suite, mode Mode, apiErr error) []CheckResult {
	results := make([]CheckResult, len(s.Checks))

	if mode == ModeSync {
		for i, c := range s.Checks {
			results[i] = r.runCheck(ctx, c, apiErr)
		}
		return results
	}

	workers := r.scenario.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, c := range s.Checks {
		select {
		case <-ctx.Done():
			results[i] = CheckResult{Name: c.Name, Message: ctx.Err().Error()}
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, c Check) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = r.runCheck(ctx, c, apiErr)
		}(i, c)
	}
	wg.Wait()
	return results
}

func (r *Runner) runCheck(ctx context.Context, c Check, apiErr error) CheckResult {
	started := time.Now()

	var err error
	switch {
	case c.Agent != nil:
		err = r.checkAgent(ctx, c.Agent)
	case c.Sender != nil:
		err = r.checkSender(ctx, c.Sender)
	case c.API != nil:
		if apiErr != nil {
			err = apiErr
		} else {
			err = r.checkAPI(ctx, c.API)
		}
	}

	res := CheckResult{
		Name:       c.Name,
		Passed:     err == nil,
		DurationMS: time.Since(started).Milliseconds(),
	}
	if err != nil {
		res.Message = err.Error()
		r.logger.Debug("check failed", log.String("check", c.Name), log.Err(err))
	}
	return res
}

func (r *Runner) checkAgent(ctx context.Context, c *AgentCheck) error {
	resp, err := r.getter.Get(ctx, c.Key)
	if err != nil {
		return err
	}
	if !resp.Supported() {
		return fmt.Errorf("%s: %s", c.Key, resp.ErrMsg)
	}
	if c.Want != "" && resp.Value != c.Want {
		return fmt.Errorf("%s = %q, want %q", c.Key, resp.Value, c.Want)
	}
	if c.WantJSON && !json.Valid([]byte(resp.Value)) {
		return fmt.Errorf("%s: reply is not valid JSON", c.Key)
	}
	return nil
}

func (r *Runner) checkSender(ctx context.Context, c *SenderCheck) error {
	resp, err := r.sender.Send(ctx, c.Items)
	if err != nil {
		return err
	}
	if c.WantProcessed && resp.Failed > 0 {
		return fmt.Errorf("server rejected %d of %d values", resp.Failed, resp.Total)
	}
	return nil
}

func (r *Runner) checkAPI(ctx context.Context, c *APICheck) error {
	var params any
	if len(c.Params) > 0 {
		params = c.Params
	}
	result, err := r.api.Call(ctx, c.Method, params)
	if err != nil {
		return err
	}
	if c.WantType == "" {
		return nil
	}

	var v any
	if err := json.Unmarshal(result, &v); err != nil {
		return fmt.Errorf("%s: result is not valid JSON: %w", c.Method, err)
	}
	var ok bool
	switch c.WantType {
	case "string":
		_, ok = v.(string)
	case "list":
		_, ok = v.([]any)
	case "object":
		_, ok = v.(map[string]any)
	case "bool":
		_, ok = v.(bool)
	case "number":
		_, ok = v.(float64)
	}
	if !ok {
		return fmt.Errorf("%s: result is %T, want %s", c.Method, v, c.WantType)
	}
	return nil
}

// writeSuiteLog renders one suite execution the way a test runner
// reports: a line per check, a separator, the counts, and the verdict
// line the log inspection keys on.
func writeSuiteLog(res SuiteResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s (%s) started at %s ===\n",
		res.Suite, res.Mode, res.StartedAt.UTC().Format(time.RFC3339))
	for _, c := range res.Checks {
		if c.Passed {
			fmt.Fprintf(&b, "[ OK ] %s (%dms)\n", c.Name, c.DurationMS)
		} else {
			fmt.Fprintf(&b, "[FAIL] %s: %s\n", c.Name, c.Message)
		}
	}
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 70))
	fmt.Fprintf(&b, "Ran %d checks in %.3fs\n\n", len(res.Checks), float64(res.DurationMS)/1000)
	if res.Passed {
		b.WriteString(SuccessMarker + "\n")
	} else {
		fmt.Fprintf(&b, "FAILED (failures=%d)\n", res.Failures)
	}
	return os.WriteFile(res.LogFile, []byte(b.String()), 0o644)
}
