package ai

// Turn is one entry in a conversation transcript. Role is "user" or
// "model", mirroring the wire format.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ToolDefinition describes a function the model may request. Parameters
// is a flat JSON schema: only primitive fields, no nesting, because the
// model can only reliably populate flat parameter sets.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a structured invocation request returned by the model.
type ToolCall struct {
	Name string
	Args map[string]any
}

// Reply is what one model turn produced: optional text plus zero or more
// tool calls.
type Reply struct {
	Text      string
	ToolCalls []ToolCall
}

// ----------------------
//      WIRE FORMAT
// ----------------------

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Tools             []geminiTool    `json:"tools,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiFunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}
