package inspection

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the registered equipment profile a QR code resolves to. It is
// read-only to the editing flow.
type Profile struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code             string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	ReferenceInterne string    `gorm:"column:reference_interne" json:"referenceInterne"`
	NumeroSerie      string    `gorm:"column:numero_serie" json:"numeroSerie"`
	Fabricant        string    `gorm:"column:fabricant" json:"fabricant"`
	Normes           string    `gorm:"column:normes;type:text" json:"normes"`
	NormesCertificat string    `gorm:"column:normes_certificat;type:text" json:"normesCertificat,omitempty"`
	DateControle     string    `gorm:"column:date_controle" json:"dateControle"`
	Signataire       string    `gorm:"column:signataire" json:"signataire"`
	Produit          string    `gorm:"column:produit" json:"produit"`
	CertificateURL   string    `gorm:"column:certificate_url" json:"pdfUrl"`

	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string { return "equipment_profile" }

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Standards returns the combined standards text; either column may carry it.
func (p Profile) Standards() string {
	if p.Normes != "" {
		return p.Normes
	}
	return p.NormesCertificat
}
