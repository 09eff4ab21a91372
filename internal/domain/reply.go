package domain

// Severity AI 反馈的严重程度
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AiReplyRequest AI 回复生成请求
type AiReplyRequest struct {
	EmailID                string `json:"emailId"`
	Tone                   string `json:"tone,omitempty"`  // professional, friendly, formal, casual
	Style                  string `json:"style,omitempty"` // concise, detailed, empathetic
	AdditionalContext      string `json:"additionalContext,omitempty"`
	IncludeToneFeedback    bool   `json:"includeToneFeedback"`
	IncludeClarityFeedback bool   `json:"includeClarityFeedback"`
}

// 生成参数的默认值
const (
	DefaultTone  = "professional"
	DefaultStyle = "detailed"
)

// FeedbackItem AI 对回复语气或清晰度的单条建议
type FeedbackItem struct {
	Category   string   `json:"category"`
	Suggestion string   `json:"suggestion"`
	Reason     string   `json:"reason"`
	Severity   Severity `json:"severity"`
}

// AiReplyResponse AI 回复生成结果，仅在编辑会话内有效
type AiReplyResponse struct {
	EmailID          string         `json:"emailId"`
	GeneratedReply   string         `json:"generatedReply"`
	Tone             string         `json:"tone"`
	Style            string         `json:"style"`
	ToneFeedback     []FeedbackItem `json:"toneFeedback"`
	ClarityFeedback  []FeedbackItem `json:"clarityFeedback"`
	ConfidenceScore  float64        `json:"confidenceScore"`
	ModelUsed        string         `json:"modelUsed"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
}

// Draft 本地保存的未发送回复
type Draft struct {
	Subject      string `json:"subject"`
	ReplyContent string `json:"replyContent"`
}

// ReplyTemplate 快捷回复模板
type ReplyTemplate struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ReplyTemplates 回复编辑器中的快捷模板
var ReplyTemplates = []ReplyTemplate{
	{Name: "Thank You", Content: "Thank you for contacting us. We appreciate your patience and will get back to you shortly."},
	{Name: "Under Review", Content: "We have received your request and it is currently under review. We will provide you with an update as soon as possible."},
	{Name: "Escalation", Content: "I understand your concern and I am escalating this matter to our senior support team. You will receive a response within 24 hours."},
	{Name: "Resolution", Content: "I am pleased to inform you that we have resolved your issue. Please let us know if you need any further assistance."},
}
