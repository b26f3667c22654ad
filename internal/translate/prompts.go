package translate

import "langbridge/backend/internal/models"

const productToDevPrompt = `You translate product language into engineering language.
Rewrite the product manager's message as concrete technical requirements a developer can act on:
the functionality to build, data and interfaces involved, edge cases, and open technical questions.
Keep the original intent. Reply in the language of the message. Do not add greetings or explanations.`

const devToProductPrompt = `You translate engineering language into product language.
Rewrite the developer's message for a product manager: what changes for users and the business,
risks, effort and timeline implications, and any decision the product side needs to make.
Avoid jargon. Reply in the language of the message. Do not add greetings or explanations.`

func systemPrompt(direction string) string {
	if direction == models.DirectionDevToProduct {
		return devToProductPrompt
	}
	return productToDevPrompt
}
