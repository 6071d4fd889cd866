package checklist

// The helmet form hides the serial-legibility and lifetime controls; the data
// is still hydrated for both leaves.
var helmetTemplate = newTemplate(TypeHelmet, "Casque de protection",
	SectionSpec{
		Name:  "observationsPrealables",
		Title: "Observations préalables",
		Leaves: []LeafSpec{
			{Name: "referenceInterneMarquee", Label: "Référence interne marquée et lisible", Instructions: "Référence interne marquée et lisible", Default: VerdictValid, Visible: true},
			{Name: "lisibiliteNumeroSerie", Label: "Lisibilité numéro de série", Instructions: "Lisibilité numéro de série, de la norme", Default: VerdictValid, Visible: false},
			{Name: "dureeVieNonDepassee", Label: "Durée de vie non dépassée", Instructions: "Durée de vie n'est pas dépassée", Default: VerdictValid, Visible: false},
		},
	},
	SectionSpec{
		Name:  "calotteExterieurInterieur",
		Title: "Calotte (extérieur/intérieur)",
		Leaves: []LeafSpec{
			{Name: "marqueImpact", Label: "Marque / impact", Instructions: "Marque/Impact/Fissure/Déformation/Trace de chaleur/Produits chimiques", Default: VerdictValid, Visible: true},
			{Name: "usure", Label: "Usure", Instructions: "Usure/Rayure profonde/Décoloration (UV)", Default: VerdictValid, Visible: true},
		},
	},
	SectionSpec{
		Name:  "calotin",
		Title: "Calotin (si existant)",
		Leaves: []LeafSpec{
			{Name: "etat", Label: "État du calotin", Instructions: "Marque/Fissure/Déformation/Écrasement", Default: VerdictNotApplicable, Visible: true},
		},
	},
	SectionSpec{
		Name:  "coiffe",
		Title: "Coiffe",
		Leaves: []LeafSpec{
			{Name: "sangles", Label: "Sangles de coiffe", Instructions: "Coupure/Usure/Déformation", Default: VerdictValid, Visible: true},
			{Name: "fixations", Label: "Fixations de coiffe", Instructions: "Fissure/Déformation (points d'ancrage dans la calotte)", Default: VerdictValid, Visible: true},
		},
	},
	SectionSpec{
		Name:  "tourDeTete",
		Title: "Tour de tête",
		Leaves: []LeafSpec{
			{Name: "etat", Label: "État du tour de tête", Instructions: "Fissure/Déformation/Usure", Default: VerdictValid, Visible: true},
		},
	},
	SectionSpec{
		Name:  "systemeReglage",
		Title: "Système de réglage",
		Leaves: []LeafSpec{
			{Name: "fonctionnement", Label: "Fonctionnement du système de réglage", Instructions: "Molette/Crémaillère (fonctionnement, usure des crans)", Default: VerdictValid, Visible: true},
		},
	},
	SectionSpec{
		Name:  "jugulaire",
		Title: "Jugulaire",
		Leaves: []LeafSpec{
			{Name: "sangle", Label: "Sangle de jugulaire", Instructions: "Coupure/Usure/Brûlure", Default: VerdictValid, Visible: true},
			{Name: "boucle", Label: "Boucle de jugulaire", Instructions: "Fonctionnement de la boucle (ouverture/fermeture)", Default: VerdictValid, Visible: true},
		},
	},
	SectionSpec{
		Name:  "mousseConfort",
		Title: "Mousse de confort",
		Leaves: []LeafSpec{
			{Name: "etat", Label: "État de la mousse", Instructions: "Usure/Déchirure/Présence", Default: VerdictValid, Visible: true},
		},
	},
	SectionSpec{
		Name:  "crochetsLampe",
		Title: "Crochets de lampe",
		Leaves: []LeafSpec{
			{Name: "etat", Label: "État des crochets", Instructions: "Fissure/Déformation/Absence", Default: VerdictNotApplicable, Visible: true},
		},
	},
	SectionSpec{
		Name:  "accessoires",
		Title: "Accessoires",
		Leaves: []LeafSpec{
			{Name: "visiere", Label: "Visière / écran", Instructions: "Rayure/Fissure/Fixations (si existant)", Default: VerdictNotApplicable, Visible: true},
			{Name: "autres", Label: "Autres accessoires", Instructions: "Protections auditives/Porte-badge (si existant)", Default: VerdictNotApplicable, Visible: true},
		},
	},
)
