package oracle

// NewTestOracle creates a ChatOracle around a mock chat completer.
func NewTestOracle(cc chatCompleter, opts ...Option) *ChatOracle {
	return New(nil, Gemini, append([]Option{withChatCompleter(cc)}, opts...)...)
}
