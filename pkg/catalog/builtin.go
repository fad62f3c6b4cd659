package catalog

import "nebula-hq/nebula/pkg/providers"

// DefaultModelID is selected when no model is configured.
const DefaultModelID = "gemini-2.5-flash"

// Builtin returns the built-in models.
func Builtin() []Model {
	return []Model{
		{
			ID:          "gemini-2.5-flash",
			Name:        "Gemini 2.5 Flash",
			Description: "Google's fast general-purpose model",
			Provider:    providers.ProviderGoogle,
			VendorModel: "gemini-2.5-flash",
		},
		{
			ID:          "gemini-3-pro",
			Name:        "Gemini 3.0 Pro",
			Description: "Google's strongest reasoning model",
			Provider:    providers.ProviderGoogle,
			VendorModel: "gemini-3-pro-preview",
		},
		{
			ID:          "deepseek-v3",
			Name:        "DeepSeek V3",
			Description: "DeepSeek V3, requires a DeepSeek key",
			Provider:    providers.ProviderDeepSeek,
			VendorModel: "deepseek-chat",
		},
		{
			ID:          "deepseek-r1",
			Name:        "DeepSeek R1",
			Description: "Reasoning model, strong at math and code",
			Provider:    providers.ProviderDeepSeek,
			VendorModel: "deepseek-reasoner",
		},
		{
			ID:          "grok-2",
			Name:        "Grok 2 (xAI)",
			Description: "xAI model, requires an xAI key",
			Provider:    providers.ProviderXAI,
			VendorModel: "grok-beta",
		},
		{
			ID:          "gpt-4o",
			Name:        "ChatGPT 4o",
			Description: "OpenAI flagship model, requires an OpenAI key",
			Provider:    providers.ProviderOpenAI,
			VendorModel: "gpt-4o",
		},
		{
			ID:          "flux-painter",
			Name:        "Gemini Painter",
			Description: "Google image generation model",
			Provider:    providers.ProviderGoogle,
			VendorModel: "gemini-2.5-flash-image",
		},
	}
}
