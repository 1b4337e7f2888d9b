package concierge

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const (
	ToolAddToOrder   = "addToOrder"
	ToolOpenCabModal = "openCabModal"
)

// ParamType 工具参数的 JSON schema 类型
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
)

// ToolParam 工具的一个参数
type ToolParam struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// ToolSpec 与后端无关的函数声明
type ToolSpec struct {
	Name        string
	Description string
	Params      []ToolParam
}

// AddToOrderTool 让模型把饮品加入客人的购物车
func AddToOrderTool() ToolSpec {
	return ToolSpec{
		Name:        ToolAddToOrder,
		Description: "Add an item from the menu to the customer's shopping cart/order. Use this when the user explicitly wants to order a drink or item.",
		Params: []ToolParam{
			{
				Name:        "itemName",
				Type:        ParamString,
				Description: "The exact name of the item from the menu. IMPORTANT: For items with multiple sizes (e.g., beers like 'Cold IPA'), you MUST include the size/format in the name (e.g., 'Cold IPA (Verre)', 'Cold IPA (Pinte)').",
				Required:    true,
			},
			{
				Name:        "quantity",
				Type:        ParamInteger,
				Description: "The number of items to order. Defaults to 1.",
			},
		},
	}
}

// OpenCabTool 让模型在客户端打开叫车界面
func OpenCabTool() ToolSpec {
	return ToolSpec{
		Name:        ToolOpenCabModal,
		Description: "Open the taxi/cab selection modal for the user. Use this when the user asks for a taxi, uber, cab, or a ride home.",
	}
}

// DefaultTools 每个会话声明的工具
func DefaultTools() []ToolSpec {
	return []ToolSpec{AddToOrderTool(), OpenCabTool()}
}

// RequiredParams 返回必填参数名
func (t ToolSpec) RequiredParams() []string {
	var required []string
	for _, p := range t.Params {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return required
}

// SchemaJSON 将参数渲染为 JSON schema
func (t ToolSpec) SchemaJSON() string {
	properties := make(map[string]any, len(t.Params))
	for _, p := range t.Params {
		properties[p.Name] = map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if required := t.RequiredParams(); len(required) > 0 {
		schema["required"] = required
	}

	data, _ := json.Marshal(schema)
	return string(data)
}

// ToolValidationError 工具调用参数的校验错误
type ToolValidationError struct {
	ToolName string
	Errors   []string
}

func (e *ToolValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.ToolName, strings.Join(e.Errors, "; "))
}

// ValidateArgs 按声明的 schema 校验参数
func (t ToolSpec) ValidateArgs(args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}

	schemaLoader := gojsonschema.NewStringLoader(t.SchemaJSON())
	documentLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return &ToolValidationError{ToolName: t.Name, Errors: msgs}
	}
	return nil
}

// quantityArg reads an optional positive quantity; anything missing or below one means one.
func quantityArg(args map[string]any) int {
	var qty int
	switch v := args["quantity"].(type) {
	case float64:
		qty = int(math.Round(v))
	case float32:
		qty = int(math.Round(float64(v)))
	case int:
		qty = v
	case int32:
		qty = int(v)
	case int64:
		qty = int(v)
	case json.Number:
		n, _ := v.Int64()
		qty = int(n)
	case string:
		qty, _ = strconv.Atoi(strings.TrimSpace(v))
	}
	if qty < 1 {
		return 1
	}
	return qty
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return strings.TrimSpace(value)
}
