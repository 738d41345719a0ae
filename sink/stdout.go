package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/skywatchd/skywatch/pkg/log"
	"github.com/skywatchd/skywatch/source"
)

// StdoutSink writes matched events as JSON lines, one per event, for
// piping into other tooling. Pretty mode adds a human-readable block
// instead.
type StdoutSink struct {
	prettyPrint bool
}

func NewStdoutSink(prettyPrint bool) *StdoutSink {
	return &StdoutSink{
		prettyPrint: prettyPrint,
	}
}

func (s *StdoutSink) Write(ctx context.Context, events []*source.Event) error {
	log.Debugf("StdoutSink write %d events", len(events))

	if len(events) == 0 {
		return nil
	}

	if s.prettyPrint {
		fmt.Print(s.buildPrettyOutput(events))
		return nil
	}

	var outputs []string
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			log.Errorf("failed to marshal event %s: %v", event.ID, err)
			continue
		}
		outputs = append(outputs, string(data))
	}
	fmt.Println(strings.Join(outputs, "\n"))
	return nil
}

func (s *StdoutSink) buildPrettyOutput(events []*source.Event) string {
	var sb strings.Builder

	for i, event := range events {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString("----------------------------------------\n")
		sb.WriteString(fmt.Sprintf("Event ID: %s\n", event.ID))
		sb.WriteString(fmt.Sprintf("Kind: %s\n", event.Kind))
		sb.WriteString(fmt.Sprintf("Repository: %s\n", event.Did))
		sb.WriteString(fmt.Sprintf("Time: %s\n", event.Timestamp().Format(time.RFC3339)))
		if len(event.Matches) > 0 {
			sb.WriteString(fmt.Sprintf("Filters: %s\n", strings.Join(event.Matches, ", ")))
		}

		switch event.Kind {
		case source.KindCommit:
			if c := event.Commit; c != nil {
				sb.WriteString(fmt.Sprintf("Operation: %s %s/%s\n", c.Operation, c.Collection, c.RKey))
				for _, t := range event.Texts() {
					sb.WriteString(fmt.Sprintf("Text: %s\n", t))
				}
			}
		case source.KindIdentity:
			if id := event.Identity; id != nil {
				sb.WriteString(fmt.Sprintf("Handle: %s\n", id.Handle))
			}
		case source.KindAccount:
			if a := event.Account; a != nil {
				sb.WriteString(fmt.Sprintf("Active: %t %s\n", a.Active, a.Status))
			}
		}

		sb.WriteString("----------------------------------------\n")
	}

	return sb.String()
}

func (s *StdoutSink) Flush(ctx context.Context) error {
	return nil
}

func (s *StdoutSink) Close() error {
	return nil
}

func (s *StdoutSink) Type() string {
	return "stdout"
}

var _ Sink = (*StdoutSink)(nil)
