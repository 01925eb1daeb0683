package dashboard

// DocumentStatus tells whether a document can be downloaded.
type DocumentStatus string

const (
	DocumentAvailable DocumentStatus = "available"
	DocumentPending   DocumentStatus = "pending"
	DocumentMissing   DocumentStatus = "missing"
)

// Document is a signed file of the customer file.
type Document struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"` // contract | consent
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      DocumentStatus `json:"status"`
	SignedAt    string         `json:"signedAt,omitempty"`
	FileName    string         `json:"fileName,omitempty"`
	URL         string         `json:"url,omitempty"`
}

// Documents returns the customer's documents.
// TODO: read them from the order back office once order numbers are linked.
func Documents() []Document {
	return []Document{
		{
			ID:          "contract-1",
			Type:        "contract",
			Title:       "Contrat d’achat / souscription Bonvan",
			Description: "Contrat signé lié à votre solution Bonvan.",
			Status:      DocumentAvailable,
			SignedAt:    "2026-01-15T10:00:00.000Z",
			FileName:    "Contrat_Bonvan.pdf",
			URL:         "/docs/Contrat_Bonvan.pdf",
		},
		{
			ID:          "consent-1",
			Type:        "consent",
			Title:       "Attestation de consentement",
			Description: "Attestation de consentement signée.",
			Status:      DocumentAvailable,
			SignedAt:    "2026-01-15T10:00:00.000Z",
			FileName:    "Consentement_Bonvan.pdf",
			URL:         "/docs/Consentement_Bonvan.pdf",
		},
	}
}
