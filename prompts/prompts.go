package prompts

// ClassifyEmailPrompt is the default template for email intent classification.
// It is rendered as a Go template with these variables:
//   - categories: one " - '<request_type>': <sub-types>." line per category
//   - no_intent:  the fallback label
//   - email:      the labeled subject/content block
const ClassifyEmailPrompt = `Classify the intent of the following email into predefined categories:
{{.categories}}If the email matches none of the above categories, classify it as '{{.no_intent}}'.
Provide a confidence score for the classification. Make sure the response is always in the following JSON format, which should adhere to the rules mentioned above: {"request_type": "value", "sub_request_type": "value", "confidence_score": "value"}

{{.email}}`
