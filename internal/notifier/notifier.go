// Package notifier renders verdicts as plain-language advice aimed at
// non-technical users. It subscribes to the event bus and writes one short
// message per verdict.
package notifier

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"filewarden/internal/eventbus"
	"filewarden/internal/models"

	"github.com/rs/zerolog"
)

// VerdictNotifier formats verdict events for humans and writes them to out.
type VerdictNotifier struct {
	out    io.Writer
	logger zerolog.Logger
	wg     sync.WaitGroup
	cancel func()
}

// NewVerdictNotifier creates a notifier writing to out.
func NewVerdictNotifier(out io.Writer, log zerolog.Logger) *VerdictNotifier {
	return &VerdictNotifier{
		out:    out,
		logger: log.With().Str("component", "VerdictNotifier").Logger(),
	}
}

// Start subscribes to verdict events on the bus until Stop is called or the
// bus closes.
func (n *VerdictNotifier) Start(bus *eventbus.Bus) {
	events, cancel := bus.Subscribe(models.TopicVerdicts)
	n.cancel = cancel

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for evt := range events {
			verdict, ok := evt.Payload.(models.VerdictEvent)
			if !ok {
				continue
			}
			if _, err := fmt.Fprint(n.out, FormatVerdictEvent(verdict)); err != nil {
				n.logger.Warn().Err(err).Msg("Failed to write notification")
			}
		}
	}()
}

// Stop unsubscribes and waits for in-flight notifications to finish.
func (n *VerdictNotifier) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
	n.wg.Wait()
}

// FormatVerdictEvent renders one verdict as a short plain-language message.
func FormatVerdictEvent(evt models.VerdictEvent) string {
	var b strings.Builder

	b.WriteString(headline(evt.Level))
	b.WriteByte('\n')

	for _, signal := range evt.Signals {
		if signal.Reason == "" {
			continue
		}
		fmt.Fprintf(&b, "  - %s\n", signal.Reason)
	}

	if advice := adviceFor(evt.Level); advice != "" {
		b.WriteString(advice)
		b.WriteByte('\n')
	}
	return b.String()
}

func headline(level models.RiskLevel) string {
	switch level {
	case models.RiskDangerous:
		return "STOP: this looks dangerous."
	case models.RiskSuspicious:
		return "Caution: something about this looks off."
	case models.RiskSafe:
		return "This looks safe."
	default:
		return "We could not fully check this."
	}
}

func adviceFor(level models.RiskLevel) string {
	switch level {
	case models.RiskDangerous:
		return "Do not open it. If someone sent it to you, ask a person you trust before doing anything."
	case models.RiskSuspicious:
		return "Only continue if you were expecting this and trust where it came from."
	case models.RiskSafe:
		return "Still, only open things from people or websites you trust."
	default:
		return "Treat it carefully until it can be checked again."
	}
}
