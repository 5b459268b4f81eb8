package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"ledger-recon/internal/core"
)

type AgentService interface {
	DraftCorrection(ctx context.Context, req DraftRequest) (*core.CorrectionDraft, error)
}

// DraftRequest carries everything the agent needs to draft a replacement
// entry set for one alert: the alert itself, its resolved guide, and the
// ledger entries currently matching the reference.
type DraftRequest struct {
	Alert          core.Alert
	Guide          *core.Guide
	CurrentEntries []core.Entry
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// DraftCorrection asks the model for a balanced replacement entry list for
// the alert's reference. The output is constrained by the JSON schema
// reflected from core.CorrectionDraft, then normalized and validated like
// any user-supplied draft.
func (a *Agent) DraftCorrection(ctx context.Context, req DraftRequest) (*core.CorrectionDraft, error) {
	prompt, err := buildDraftPrompt(req)
	if err != nil {
		return nil, err
	}

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "correction_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A balanced replacement entry list resolving one reconciliation alert"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var draft core.CorrectionDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	draft.Ref = req.Alert.Ref
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("draft validation failed: %w", err)
	}
	return &draft, nil
}

func buildDraftPrompt(req DraftRequest) (string, error) {
	alertJSON, err := json.Marshal(req.Alert)
	if err != nil {
		return "", fmt.Errorf("failed to encode alert: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert French accountant correcting a bank reconciliation anomaly.
Propose the replacement ledger entries that resolve the alert below.
Rules:
1. Every entry label MUST contain the reference %s.
2. Debits MUST equal credits across the entry list.
3. Amounts are strings with a dot decimal separator (e.g. "1234.56").
4. Dates use the JJ/MM/AAAA format.
5. Explain your reasoning in French and give a confidence score (0.0-1.0).

Alert:
%s
`, req.Alert.Ref, alertJSON)

	if req.Guide != nil {
		fmt.Fprintf(&b, `
Corrective guide:
- Action: %s
- Suggested account: %s
- Suggested label: %s
- Counter entry: %s
`, req.Guide.Action, req.Guide.SuggestedAccount,
			req.Guide.LabelTemplate(req.Alert.Ref, req.Alert.NomClient),
			req.Guide.CounterEntryHint)
	}

	if len(req.CurrentEntries) > 0 {
		b.WriteString("\nCurrent ledger entries for this reference:\n")
		for _, e := range req.CurrentEntries {
			fmt.Fprintf(&b, "- compte %s | %s | %s | débit %s | crédit %s\n",
				e.Account, e.Label, core.WireDate(e.Date), e.Debit.StringFixed(2), e.Credit.StringFixed(2))
		}
	}
	return b.String(), nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.CorrectionDraft
	return reflector.Reflect(v)
}
