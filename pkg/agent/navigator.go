// Package agent implements an LLM-driven navigation loop over a live
// browser session. Each step the agent observes the current page, asks
// the model for a decision, and either follows a link or finishes with
// a report. The loop is bounded by a step budget and by the caller's
// context deadline.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sushgandhi/browser-use-mcp/pkg/browser"
	"github.com/sushgandhi/browser-use-mcp/pkg/llm"
	"github.com/sushgandhi/browser-use-mcp/pkg/logging"
)

const (
	// DefaultMaxSteps bounds the observe-decide-act loop.
	DefaultMaxSteps = 15

	maxLinksPerObservation = 40
	maxObservedTextLen     = 120
)

const systemPrompt = `You are a web navigation agent looking for downloadable documents.

On every turn you receive a snapshot of the current page: its URL, title,
and the links it contains. Respond with a single JSON object and nothing else:

  {"action": "navigate", "url": "<absolute URL to visit next>"}

to follow a link, or

  {"action": "finish", "result": <your findings>}

when you have what you need. The result must be a JSON array of document
objects, each with "title", "url", "document_type", and optionally
"filing_date", "company_name", "year", and "description". Only include
documents you actually saw on the pages you visited. If nothing matches
the task, finish with an empty array.`

// Browser is the page surface the navigator drives. *browser.Session
// satisfies it.
type Browser interface {
	Navigate(ctx context.Context, target string) error
	Observe(ctx context.Context) (*browser.PageSnapshot, error)
}

// RunResult is the outcome of one navigation run.
type RunResult struct {
	// Report is the model's final answer, normally a JSON array of
	// documents but taken verbatim from the model.
	Report string

	Steps int
	Calls int
	Usage llm.Usage
}

// Navigator runs bounded document-hunting sessions against a Browser.
type Navigator struct {
	provider llm.Provider
	maxSteps int
	log      *logging.Logger
}

// NewNavigator creates a navigator backed by the given provider.
func NewNavigator(provider llm.Provider, maxSteps int) *Navigator {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	log, _ := logging.NewLogger("agent")
	return &Navigator{
		provider: provider,
		maxSteps: maxSteps,
		log:      log,
	}
}

// Run navigates to startURL and drives the loop until the model finishes,
// the step budget runs out, or ctx expires. On step exhaustion the model
// is asked once for its best answer so far.
func (n *Navigator) Run(ctx context.Context, task, startURL string, b Browser) (*RunResult, error) {
	result := &RunResult{}

	if err := b.Navigate(ctx, startURL); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", startURL, err)
	}

	messages := []*llm.Message{
		llm.NewSystemMessage(systemPrompt),
		llm.NewUserMessage("Task: " + task),
	}

	for step := 0; step < n.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Steps = step + 1

		snapshot, err := b.Observe(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to observe page: %w", err)
		}
		messages = append(messages, llm.NewUserMessage(renderObservation(snapshot)))

		reply, err := n.complete(ctx, messages, result)
		if err != nil {
			return nil, err
		}
		messages = append(messages, reply)

		decision, err := parseDecision(reply.Content)
		if err != nil {
			n.log.Warnf("step %d: unparseable decision: %v", step+1, err)
			messages = append(messages, llm.NewUserMessage(
				"Your reply was not a valid decision object. Respond with a single JSON object using the navigate or finish action."))
			continue
		}

		switch decision.Action {
		case "finish":
			result.Report = decision.Result
			n.log.Infof("agent finished after %d steps, %d llm calls", result.Steps, result.Calls)
			return result, nil
		case "navigate":
			if decision.URL == "" {
				messages = append(messages, llm.NewUserMessage("The navigate action requires a url field."))
				continue
			}
			n.log.Debugf("step %d: navigating to %s", step+1, decision.URL)
			if err := b.Navigate(ctx, decision.URL); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				messages = append(messages, llm.NewUserMessage(
					fmt.Sprintf("Navigation to %s failed: %v. Pick a different link or finish.", decision.URL, err)))
			}
		default:
			messages = append(messages, llm.NewUserMessage(
				fmt.Sprintf("Unknown action %q. Use navigate or finish.", decision.Action)))
		}
	}

	// Out of steps. Give the model one last chance to report.
	messages = append(messages, llm.NewUserMessage(
		"You are out of navigation steps. Finish now with your best answer."))
	reply, err := n.complete(ctx, messages, result)
	if err != nil {
		return nil, err
	}
	if decision, err := parseDecision(reply.Content); err == nil && decision.Action == "finish" {
		result.Report = decision.Result
	} else {
		result.Report = reply.Content
	}
	n.log.Infof("agent hit step limit after %d steps, %d llm calls", result.Steps, result.Calls)
	return result, nil
}

func (n *Navigator) complete(ctx context.Context, messages []*llm.Message, result *RunResult) (*llm.Message, error) {
	reply, usage, err := n.provider.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("llm call failed: %w", err)
	}
	result.Calls++
	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 {
		usage = estimateUsage(n.provider.GetModel(), messages, reply)
	}
	result.Usage.PromptTokens += usage.PromptTokens
	result.Usage.CompletionTokens += usage.CompletionTokens
	return reply, nil
}

type decision struct {
	Action string          `json:"action"`
	URL    string          `json:"url"`
	Result json.RawMessage `json:"result"`
}

type parsedDecision struct {
	Action string
	URL    string
	Result string
}

// parseDecision extracts the decision object from a model reply. Models
// sometimes wrap the JSON in prose or code fences, so it scans for the
// outermost braces rather than unmarshaling the reply as-is.
func parseDecision(content string) (*parsedDecision, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var d decision
	if err := json.Unmarshal([]byte(content[start:end+1]), &d); err != nil {
		return nil, fmt.Errorf("malformed decision: %w", err)
	}
	if d.Action == "" {
		return nil, fmt.Errorf("decision has no action")
	}

	parsed := &parsedDecision{Action: d.Action, URL: d.URL}
	if len(d.Result) > 0 {
		// Unwrap a JSON string result; keep arrays and objects verbatim.
		var s string
		if err := json.Unmarshal(d.Result, &s); err == nil {
			parsed.Result = s
		} else {
			parsed.Result = string(d.Result)
		}
	}
	return parsed, nil
}

// renderObservation flattens a page snapshot into the text the model sees.
func renderObservation(snapshot *browser.PageSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current page: %s\n", snapshot.URL)
	if snapshot.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", snapshot.Title)
	}

	if len(snapshot.Links) == 0 {
		b.WriteString("The page has no links.")
		return b.String()
	}

	b.WriteString("Links:\n")
	for i, link := range snapshot.Links {
		if i >= maxLinksPerObservation {
			fmt.Fprintf(&b, "... and %d more links\n", len(snapshot.Links)-maxLinksPerObservation)
			break
		}
		text := collapse(link.Text)
		if text == "" {
			text = collapse(link.Surrounding)
		}
		fmt.Fprintf(&b, "- [%s](%s)\n", clampText(text, maxObservedTextLen), link.Href)
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clampText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
