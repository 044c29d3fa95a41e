package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gkwang4912/speechwall/config"
	"github.com/gkwang4912/speechwall/internal/clients"
	"github.com/gkwang4912/speechwall/internal/models"
)

// requestSpacing bounds the request rate: one classification per row,
// strictly sequential, with a pause between rows.
const requestSpacing = 1 * time.Second

const promptInstructions = `你是一個簡單的情緒判斷助理，僅根據整體輸入內容判斷其情緒為正向、中性或負向。
請將整個輸入視為一個完整內容，而非逐點或逐句分析。
判斷時，需有明確正向、負向詞彙才判斷成正負向，否則皆視為中性

輸出結果僅為單一數字：
'1'表示正向，'0'表示中性，'-1'表示負向。
禁止生成任何其他字符、逐點回應或額外內容。
`

// Remote classifies rows through the hosted model. Each row runs a
// bounded attempt loop: transient failures back off exponentially up to
// MAX_RETRIES, quota exhaustion blocks for a cooldown without spending
// an attempt, and anything the service refuses outright fails the row.
type Remote struct {
	client *clients.GeminiClient
	model  string
	apiKey string
	prompt string

	// sleep is swapped out in tests so backoff and cooldown waits
	// do not run in real time.
	sleep func(ctx context.Context, d time.Duration)
}

func NewRemote(cfg *config.Config, client *clients.GeminiClient) *Remote {
	return &Remote{
		client: client,
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		prompt: buildPrompt(cfg.ContextFacts),
		sleep:  sleepCtx,
	}
}

// sleepCtx waits for d or until the context is canceled, so an
// interrupt during a long quota cooldown stops the run promptly.
// The attempt loop re-checks ctx before the next request.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// buildPrompt assembles the fixed instruction block plus the configured
// disambiguation facts. The facts travel inside the request so the
// model never has to guess what campus proper nouns mean.
func buildPrompt(facts []string) string {
	var b strings.Builder
	b.WriteString(promptInstructions)
	if len(facts) > 0 {
		b.WriteString("\n你所需要知道的資訊：\n")
		for i, fact := range facts {
			fmt.Fprintf(&b, "%d、%s\n", i+1, fact)
		}
	}
	b.WriteString("\n請分析以下文本：\n")
	return b.String()
}

func (r *Remote) Classify(ctx context.Context, text string) (models.RowResult, error) {
	prompt := r.prompt + text

	attempts := 0
	backoff := clients.INITIAL_BACKOFF
	r.sleep(ctx, requestSpacing)

	for {
		if err := ctx.Err(); err != nil {
			return models.RowResult{}, err
		}

		reply, err := r.client.GenerateContent(r.model, r.apiKey, prompt)

		var quota *clients.QuotaError
		switch {
		case err == nil:
			label, ok := models.ParseLabel(cleanReply(reply))
			if !ok {
				slog.Warn("[Classifier] Reply is not a sentiment token, marking unclassifiable",
					slog.String("reply", reply))
				return models.RowResult{Status: models.StatusUnclassifiable}, nil
			}
			return models.RowResult{Status: models.StatusOK, Label: label}, nil

		case errors.Is(err, clients.ErrEmptyReply):
			slog.Warn("[Classifier] Empty reply, marking unclassifiable")
			return models.RowResult{Status: models.StatusUnclassifiable}, nil

		case errors.As(err, &quota):
			// Quota resets deterministically, so this is a blocking
			// wait and does not count against the retry ceiling.
			cooldown := quota.RetryAfter
			if cooldown <= 0 {
				cooldown = clients.DEFAULT_COOLDOWN
			}
			slog.Warn("[Classifier] Quota exhausted, cooling down",
				slog.Duration("cooldown", cooldown))
			r.sleep(ctx, cooldown)

		case errors.Is(err, clients.ErrServiceUnavailable):
			attempts++
			if attempts >= clients.MAX_RETRIES {
				slog.Error("[Classifier] Retries exhausted, marking row failed",
					slog.Int("attempts", attempts),
					slog.String("error", err.Error()))
				return models.RowResult{Status: models.StatusFailed}, nil
			}
			slog.Warn("[Classifier] Transient failure, will retry",
				slog.Int("attempt", attempts),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()))
			r.sleep(ctx, backoff)
			backoff *= 2
			if backoff > clients.MAX_BACKOFF {
				backoff = clients.MAX_BACKOFF
			}

		default:
			slog.Error("[Classifier] Request rejected, marking row failed",
				slog.String("error", err.Error()))
			return models.RowResult{Status: models.StatusFailed}, nil
		}
	}
}

// cleanReply strips whitespace and the quote characters models like to
// wrap single-token answers in.
func cleanReply(s string) string {
	return strings.Trim(strings.TrimSpace(s), "'\"“”‘’`")
}
