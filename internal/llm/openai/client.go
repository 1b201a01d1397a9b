package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/talentfold/resume-formatter/internal/llm"
)

// Reconcile implements llm.Reconciler using text-only chat/completions
// against any OpenAI-compatible endpoint. The request credential, when set,
// overrides the configured key for this call only and is never logged.
func (c *Client) Reconcile(ctx context.Context, req llm.ReconcileRequest) (llm.ResumeFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.reconcile.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.ResumeText),
		"language", req.Language,
		"per_request_credential", req.Credential != "",
	)

	schema := llm.BuildResumeJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "user", "content": llm.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	key := c.cfg.APIKey
	if req.Credential != "" {
		key = req.Credential
	}
	headers := map[string]string{"Authorization": "Bearer " + key}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, _, httpErr := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if httpErr != nil {
		c.log.Error("llm.reconcile.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ResumeFields{}, nil, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.reconcile.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ResumeFields{}, raw, fmt.Errorf("decode model response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.reconcile.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ResumeFields{}, raw, fmt.Errorf("no choices in model response")
	}

	content, dropped, err := llm.NormalizeAndSanitizeJSON([]byte(cc.Choices[0].Message.Content), c.log)
	if err != nil {
		c.log.Error("llm.reconcile.sanitize_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ResumeFields{}, nil, fmt.Errorf("sanitize model output: %w", err)
	}
	if len(dropped) > 0 {
		c.log.Warn("llm.reconcile.sanitize_applied", "req_id", rid, "dropped", dropped)
	}

	if err := llm.ValidateJSONAgainstSchema(schema, content); err != nil {
		if !c.cfg.LenientEntries {
			return llm.ResumeFields{}, content, fmt.Errorf("schema validation failed: %w", err)
		}
		cleaned, entryDropped, sErr := llm.SanitizeEntryFields(content)
		if sErr != nil {
			c.log.Error("llm.reconcile.entry_sanitize_failed",
				"req_id", rid, "error", sErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.ResumeFields{}, content, fmt.Errorf("entry sanitize failed: %w", sErr)
		}
		if vErr := llm.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			c.log.Error("llm.reconcile.schema_validation_failed",
				"req_id", rid, "error", vErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.ResumeFields{}, cleaned, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.log.Warn("llm.reconcile.lenient_sanitize_applied",
			"req_id", rid, "dropped", entryDropped,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		content = cleaned
	}

	var out llm.ResumeFields
	if err := json.Unmarshal(content, &out); err != nil {
		c.log.Error("llm.reconcile.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ResumeFields{}, content, fmt.Errorf("unmarshal fields: %w", err)
	}

	c.log.Info("llm.reconcile.ok",
		"req_id", rid,
		"has_name", out.Name != "",
		"experience", len(out.Experience),
		"education", len(out.Education),
		"skills", len(out.Skills),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
