package contract

// ToolRequest is one operation invocation decided by the reasoning model.
type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult carries a tool's reply back to the reasoning model.
// Output is always plain text; failures are descriptive text too, never a
// structured error, so the model-facing boundary stays text-only.
type ToolResult struct {
	Tool   string `json:"tool"`
	Output string `json:"output"`
}
