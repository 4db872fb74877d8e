// Package prompts holds the prompt configuration for order extraction:
// the operator-editable system prompt plus the fixed instruction blocks
// for image, transcript, and audio inputs.
package prompts

import (
	"strings"
	"text/template"
)

// DefaultSystemPrompt is used until an operator saves an override.
const DefaultSystemPrompt = "Du extrahierst strukturierte Bestelldaten aus einer Bäckerei-Transkription " +
	"oder einem fotografierten Bestellzettel. " +
	"Trage die Bestellungen über den bereitgestellten Funktionsaufruf ein und " +
	"verwende die Feldnamen exakt wie im Schema vorgegeben. " +
	"WICHTIG: Für jedes Produkt eine eigene Zeile (ein Objekt in orders) " +
	"mit der jeweiligen Menge."

// imageInstruction is the user turn accompanying an uploaded photo.
const imageInstruction = "Auf dem Bild ist ein handschriftlicher oder gedruckter Bestellzettel. " +
	"Lies alle Bestellungen ab und trage sie strukturiert ein. " +
	"Es kann mehrere Bestellungen geben. " +
	"Wenn Felder fehlen, nutze die Default-Werte aus dem Schema."

var transcriptTemplate = template.Must(template.New("transcript").Parse(
	`Transkription:
{{.Transcript}}

Hinweis: Es kann mehrere Bestellungen geben. Wenn Felder fehlen, nutze die Default-Werte aus dem Schema.`))

// ImageInstruction returns the user prompt for image extraction.
func ImageInstruction() string {
	return imageInstruction
}

// TranscriptInstruction renders the user prompt for transcript
// extraction with the transcript text embedded.
func TranscriptInstruction(transcript string) string {
	var sb strings.Builder
	// The template has no failure mode for plain string data.
	_ = transcriptTemplate.Execute(&sb, struct{ Transcript string }{Transcript: transcript})
	return sb.String()
}

// TranscriptionHint builds the vocabulary prompt passed to the speech
// recognizer so product names survive transcription.
func TranscriptionHint(products []string) string {
	if len(products) == 0 {
		return ""
	}
	return "Produktliste: " + strings.Join(products, ", ")
}
