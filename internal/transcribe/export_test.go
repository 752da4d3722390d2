package transcribe

// NewTestTranscriber creates an OpenAITranscriber around a mock client.
func NewTestTranscriber(client audioTranscriber, opts ...Option) *OpenAITranscriber {
	return newTranscriber(client, opts...)
}
