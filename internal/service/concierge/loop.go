package concierge

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/lejockey/concierge/backend/internal/i18n"
)

// OrderResult addToOrder 调用的购物车结果
type OrderResult struct {
	Success bool
	Message string
	Price   string
}

// Payload 返回给模型的工具响应
func (r OrderResult) Payload() map[string]any {
	status := "FAILURE"
	if r.Success {
		status = "SUCCESS"
	}
	payload := map[string]any{
		"result":  status,
		"details": r.Message,
	}
	if r.Price != "" {
		payload["price"] = r.Price
	}
	return payload
}

// Handlers 模型可以触发的本地动作，均可为空
type Handlers struct {
	AddToOrder func(ctx context.Context, itemName string, quantity int) OrderResult
	OpenCab    func(ctx context.Context)
}

const unsupportedToolMessage = "Function not supported or handler missing."

// Send delivers a guest message and drives tool calls until the model answers in text
// or the turn budget runs out. It never fails: errors become localized apology text.
func (c *Conversation) Send(ctx context.Context, text string, lang i18n.Language, h Handlers) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ensureSessionLocked(ctx) {
		return UnavailableText(lang)
	}

	reply, err := c.exchange(ctx, LanguageDirective(lang)+text, lang, h)
	if err != nil {
		log.Printf("[concierge] session=%s exchange failed: %v", c.id, err)
		if IsQuotaError(err) {
			return QuotaText(lang)
		}
		return GlitchText(lang)
	}
	return reply
}

func (c *Conversation) exchange(ctx context.Context, message string, lang i18n.Language, h Handlers) (string, error) {
	session := c.session

	resp, err := Retry(ctx, c.opts.Retry, func(ctx context.Context) (*Response, error) {
		return session.SendText(ctx, message)
	})
	if err != nil {
		return "", err
	}

	turns := c.opts.MaxTurns
	for resp.HasToolCalls() && turns > 0 {
		turns--

		results := make([]ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			results = append(results, c.dispatch(ctx, call, h))
		}

		resp, err = Retry(ctx, c.opts.Retry, func(ctx context.Context) (*Response, error) {
			return session.SendToolResults(ctx, results)
		})
		if err != nil {
			return "", err
		}
	}

	if resp.HasToolCalls() {
		log.Printf("[concierge] session=%s turn budget exhausted with %d pending tool calls", c.id, len(resp.ToolCalls))
	}
	return finalText(resp, lang), nil
}

func (c *Conversation) dispatch(ctx context.Context, call ToolCall, h Handlers) ToolResult {
	result := ToolResult{CallID: call.ID, Name: call.Name}

	switch {
	case call.Name == ToolAddToOrder && h.AddToOrder != nil:
		if err := AddToOrderTool().ValidateArgs(call.Args); err != nil {
			log.Printf("[concierge] session=%s rejected %s call: %v", c.id, call.Name, err)
			result.Payload = map[string]any{"error": err.Error()}
			return result
		}
		itemName := stringArg(call.Args, "itemName")
		quantity := quantityArg(call.Args)
		log.Printf("[concierge] session=%s tool call: adding %dx %s", c.id, quantity, itemName)
		result.Payload = h.AddToOrder(ctx, itemName, quantity).Payload()

	case call.Name == ToolOpenCabModal && h.OpenCab != nil:
		log.Printf("[concierge] session=%s tool call: opening cab modal", c.id)
		h.OpenCab(ctx)
		result.Payload = map[string]any{"result": "SUCCESS", "message": "Cab modal opened."}

	default:
		result.Payload = map[string]any{"error": unsupportedToolMessage}
	}
	return result
}

func finalText(resp *Response, lang i18n.Language) string {
	if resp == nil {
		return OrderAckText(lang)
	}

	text := resp.Text
	if text == "" {
		text = OrderAckText(lang)
	}

	var links []string
	for _, link := range resp.Grounding {
		if link.URI == "" || link.Title == "" {
			continue
		}
		links = append(links, fmt.Sprintf("🔗 [%s](%s)", link.Title, link.URI))
	}
	if len(links) > 0 {
		text += "\n\n" + strings.Join(links, "\n")
	}
	return text
}
