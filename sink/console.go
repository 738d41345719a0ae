package sink

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/skywatchd/skywatch/source"
)

// ConsoleSink renders each matched event as a table for interactive use.
type ConsoleSink struct {
	colorEnabled   bool
	tableStyle     table.Style
	maxColumnWidth int
}

type ConsoleSinkOption func(*ConsoleSink)

// WithColorOutput enables or disables colored output
func WithColorOutput(enabled bool) ConsoleSinkOption {
	return func(s *ConsoleSink) {
		s.colorEnabled = enabled
	}
}

// WithMaxColumnWidth sets the maximum column width for truncation
func WithMaxColumnWidth(width int) ConsoleSinkOption {
	return func(s *ConsoleSink) {
		s.maxColumnWidth = width
	}
}

func NewConsoleSink(options ...ConsoleSinkOption) *ConsoleSink {
	customStyle := table.Style{
		Name: "skywatch",
		Box:  table.StyleBoxLight,
		Options: table.Options{
			DrawBorder:      true,
			SeparateColumns: true,
			SeparateHeader:  true,
		},
		Title: table.TitleOptions{
			Align:  text.AlignCenter,
			Colors: text.Colors{text.FgHiWhite, text.Bold},
		},
		Color: table.ColorOptions{
			Header: text.Colors{text.FgHiWhite, text.Bold},
		},
	}

	sink := &ConsoleSink{
		colorEnabled:   true,
		tableStyle:     customStyle,
		maxColumnWidth: 80,
	}
	for _, option := range options {
		option(sink)
	}
	return sink
}

// Write outputs events to the console
func (s *ConsoleSink) Write(ctx context.Context, events []*source.Event) error {
	for _, event := range events {
		s.writeEventTable(event)
	}
	return nil
}

func (s *ConsoleSink) writeEventTable(event *source.Event) {
	commitColor := color.New(color.FgGreen, color.Bold).SprintFunc()
	identityColor := color.New(color.FgYellow, color.Bold).SprintFunc()
	accountColor := color.New(color.FgRed, color.Bold).SprintFunc()

	if !s.colorEnabled {
		commitColor = fmt.Sprint
		identityColor = fmt.Sprint
		accountColor = fmt.Sprint
	}

	var kindText string
	switch event.Kind {
	case source.KindCommit:
		kindText = commitColor("COMMIT")
	case source.KindIdentity:
		kindText = identityColor("IDENTITY")
	case source.KindAccount:
		kindText = accountColor("ACCOUNT")
	default:
		kindText = string(event.Kind)
	}

	eventTable := table.NewWriter()
	eventTable.SetOutputMirror(os.Stdout)

	eventTable.AppendRows([]table.Row{
		{"Event ID", event.ID},
		{"Kind", kindText},
		{"Repository", event.Did},
		{"Time", event.Timestamp().Format(time.RFC3339)},
		{"Cursor", event.TimeUS},
	})
	if len(event.Matches) > 0 {
		eventTable.AppendRow(table.Row{"Filters", strings.Join(event.Matches, ", ")})
	}

	switch event.Kind {
	case source.KindCommit:
		if c := event.Commit; c != nil {
			eventTable.AppendRow(table.Row{"Operation", fmt.Sprintf("%s %s/%s", c.Operation, c.Collection, c.RKey)})
			for _, t := range event.Texts() {
				eventTable.AppendRow(table.Row{"Text", s.truncateString(t)})
			}
		}
	case source.KindIdentity:
		if i := event.Identity; i != nil && i.Handle != "" {
			eventTable.AppendRow(table.Row{"Handle", i.Handle})
		}
	case source.KindAccount:
		if a := event.Account; a != nil {
			status := a.Status
			if status == "" && a.Active {
				status = "active"
			}
			eventTable.AppendRow(table.Row{"Status", status})
		}
	}

	eventTable.SetStyle(s.tableStyle)
	eventTable.SetTitle("%s %s", kindText, event.Did)

	fmt.Println()
	eventTable.Render()
}

func (s *ConsoleSink) truncateString(str string) string {
	if len(str) <= s.maxColumnWidth {
		return str
	}
	return str[:s.maxColumnWidth-3] + "..."
}

// Flush implements the Sink interface, no buffering for console output
func (s *ConsoleSink) Flush(ctx context.Context) error {
	return nil
}

// Close implements the Sink interface
func (s *ConsoleSink) Close() error {
	return nil
}

// Type returns the type of this sink
func (s *ConsoleSink) Type() string {
	return "console"
}

var _ Sink = (*ConsoleSink)(nil)
