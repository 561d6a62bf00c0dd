// Package repl implements the interactive demo loop: a line-oriented prompt
// that streams agent output to a writer and carries conversation state
// between turns.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/troupe-ai/troupe/core"
	"github.com/troupe-ai/troupe/model"
	"github.com/troupe-ai/troupe/runner"
)

// Options configure the loop.
type Options struct {
	// In defaults to stdin.
	In io.Reader
	// Out defaults to stdout.
	Out io.Writer
	// ContextVars seed the first run; later runs carry the accumulated
	// variables forward.
	ContextVars core.ContextVars
	// RunOptions are applied to every run.
	RunOptions []runner.RunOption
}

// RunDemoLoop reads user lines until EOF or "exit"/"quit", streaming each
// run's assistant output as it arrives. Handoffs persist: the agent returned
// by one run starts the next. It returns the first fatal error; EOF is a
// normal termination.
func RunDemoLoop(ctx context.Context, r *runner.Runner, agent *core.Agent, optFns ...func(o *Options)) error {
	opts := Options{In: os.Stdin, Out: os.Stdout, ContextVars: core.ContextVars{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	fmt.Fprintln(opts.Out, "Starting demo loop. Type \"exit\" to leave.")

	active := agent
	vars := opts.ContextVars
	var history []core.Message

	scanner := bufio.NewScanner(opts.In)
	for {
		fmt.Fprint(opts.Out, "User: ")
		if !scanner.Scan() {
			fmt.Fprintln(opts.Out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		history = append(history, core.Message{Role: core.RoleUser, Content: line})

		runOpts := append([]runner.RunOption{runner.WithContextVars(vars)}, opts.RunOptions...)
		events, errCh := r.RunStream(ctx, active, history, runOpts...)

		resp, err := render(opts.Out, events, errCh)
		if err != nil {
			return err
		}

		history = append(history, resp.Messages...)
		active = resp.Agent
		vars = resp.ContextVars
	}
}

// render prints the delta stream and returns the terminal response.
func render(out io.Writer, events <-chan runner.Event, errCh <-chan error) (*core.Response, error) {
	var (
		resp    *core.Response
		printed bool
	)
	for ev := range events {
		switch ev.Type {
		case runner.EventDelta:
			d := ev.Delta
			if d.Sender != "" && !printed {
				fmt.Fprintf(out, "%s: ", d.Sender)
				printed = true
			}
			fmt.Fprint(out, d.Content)
			for _, tc := range d.ToolCalls {
				if tc.Name != "" {
					fmt.Fprintf(out, "[calling %s]", tc.Name)
				}
			}
		case runner.EventTurnEnd:
			if printed {
				fmt.Fprintln(out)
				printed = false
			}
		case runner.EventResponse:
			resp = ev.Response
		}
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("stream ended without a response")
	}
	return resp, nil
}

// RunScripted drives the loop against a scripted model with scripted user
// lines. It exists for tests and examples that need a deterministic
// transcript.
func RunScripted(ctx context.Context, m *model.ScriptedModel, agent *core.Agent, lines []string, out io.Writer) error {
	input := strings.NewReader(strings.Join(append(lines, "exit"), "\n") + "\n")
	return RunDemoLoop(ctx, runner.New(m), agent, func(o *Options) {
		o.In = input
		o.Out = out
	})
}
