package inspection

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// State is the coarse equipment state shown as a badge.
type State string

const (
	StateOK      State = "OK"
	StateInvalid State = "INVALID"
)

func (s State) Valid() bool { return s == StateOK || s == StateInvalid }

// SignatureBlock is stored with the record but only written by the signature
// and certificate upload paths, or by sibling propagation.
type SignatureBlock struct {
	CertificateURL   string     `gorm:"column:certificate_url" json:"certificateUrl"`
	SignatureDataURI string     `gorm:"column:signature_data_uri;type:text" json:"digitalSignature"`
	SignedAt         *time.Time `gorm:"column:signed_at" json:"signedAt,omitempty"`
}

// Record is one equipment inspection sheet.
type Record struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EquipmentType string    `gorm:"column:equipment_type;not null;index" json:"equipmentType"`
	// BatchID groups the records of one inspection campaign; propagation
	// targets siblings sharing it.
	BatchID string `gorm:"column:batch_id;index" json:"batchId,omitempty"`

	ReferenceInterne    string `gorm:"column:reference_interne;index" json:"referenceInterne"`
	TypeEquipement      string `gorm:"column:type_equipement" json:"typeEquipement"`
	NumeroSerie         string `gorm:"column:numero_serie" json:"numeroSerie"`
	NumeroSerieTop      string `gorm:"column:numero_serie_top" json:"numeroSerieTop"`
	NumeroSerieCuissard string `gorm:"column:numero_serie_cuissard" json:"numeroSerieCuissard"`
	Fabricant           string `gorm:"column:fabricant" json:"fabricant"`
	Signataire          string `gorm:"column:signataire" json:"signataire"`

	DateFabrication string `gorm:"column:date_fabrication" json:"dateFabrication"`
	DateAchat       string `gorm:"column:date_achat" json:"dateAchat"`
	DateControle    string `gorm:"column:date_controle" json:"dateControle"`
	// DateProchaineInspection drives the derived state.
	DateProchaineInspection string `gorm:"column:date_prochaine_inspection" json:"dateProchaineInspection"`

	Normes             string `gorm:"column:normes;type:text" json:"normes"`
	NormesCertificat   string `gorm:"column:normes_certificat;type:text" json:"normesCertificat"`
	DocumentsReference string `gorm:"column:documents_reference;type:text" json:"documentsReference"`

	PhotoURL             string `gorm:"column:photo_url" json:"photo"`
	QRCodeURL            string `gorm:"column:qr_code_url" json:"qrCode"`
	PdfURL               string `gorm:"column:pdf_url" json:"pdfUrl"`
	ReferenceDocumentURL string `gorm:"column:reference_document_url" json:"referenceDocumentUrl"`
	DateAchatImageURL    string `gorm:"column:date_achat_image_url" json:"dateAchatImage"`
	QRRawText            string `gorm:"column:qr_raw_text;type:text" json:"qrRawText,omitempty"`

	SignatureBlock `gorm:"embedded"`

	Etat State `gorm:"column:etat;index" json:"etat"`
	// EtatOverride is set when the operator picked the state by hand.
	EtatOverride bool `gorm:"column:etat_override;not null;default:false" json:"etatOverride"`

	InspectionData  datatypes.JSON `gorm:"column:inspection_data" json:"inspectionData"`
	CrossedOutWords datatypes.JSON `gorm:"column:crossed_out_words" json:"crossedOutWords"`

	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null;index" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Record) TableName() string { return "inspection_record" }

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
