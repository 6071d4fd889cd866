package checklist

var harnessTemplate = newTemplate(TypeHarness, "Harnais d'antichute",
	SectionSpec{
		Name:  "observationsPrealables",
		Title: "Observations préalables",
		Leaves: []LeafSpec{
			{Name: "referenceInterneMarquee", Label: "Référence interne marquée et lisible", Instructions: "Référence interne marquée et lisible", Default: VerdictValid, Visible: true},
			{Name: "lisibiliteNumeroSerie", Label: "Lisibilité numéro de série", Instructions: "Lisibilité numéro de série, de la norme", Default: VerdictValid, Visible: true},
			{Name: "dureeVieNonDepassee", Label: "Durée de vie non dépassée", Instructions: "Durée de vie n'est pas dépassée", Default: VerdictValid, Visible: true},
		},
	},
	SectionSpec{
		Name:  "etatSangles",
		Title: "État des sangles de",
		Leaves: []LeafSpec{
			{Name: "ceintureCuisseBretelles", Label: "Ceinture / cuisse / bretelles / sous-fessière", Instructions: "Coupure/Gonflement/Usure Dommage dû à l'utilisation, à la chaleur, aux UV, aux produits chimiques...", Default: VerdictValid, Visible: true},
			{Name: "coutureSecurite", Label: "Coutures de sécurité", Instructions: "Fil distendu, usé ou coupé", Default: VerdictValid, Visible: true},
			{Name: "indicateurArretChute", Label: "Indicateur d'arrêt de chute", Instructions: "Indicateur d'arrêt de chute apparent (si existant)", Default: VerdictNotApplicable, Visible: true},
		},
	},
	SectionSpec{
		Name:  "pointsAttache",
		Title: "Points d'attache",
		Leaves: []LeafSpec{
			{Name: "metalliques", Label: "Points d'attache métalliques", Instructions: "Marque/Fissure/Usure/Déformation/Corrosion", Default: VerdictValid, Visible: true},
			{Name: "textiles", Label: "Points d'attache textiles", Instructions: "Coupure/Usure/Déchirure", Default: VerdictValid, Visible: true},
			{Name: "plastiques", Label: "Points d'attache plastiques", Instructions: "Coupure/Usure/Déchirure", Default: VerdictValid, Visible: true},
		},
	},
	SectionSpec{
		Name:  "etatBouclesReglages",
		Title: "État boucles de réglages",
		Leaves: []LeafSpec{
			{Name: "passageSangles", Label: "Passage de sangles", Instructions: "Passage de sangles (pas de vrillage)", Default: VerdictValid, Visible: true},
			{Name: "fonctionnementBoucles", Label: "Fonctionnement des boucles", Instructions: "Marque/Fissure/Usure/Déformation/Corrosion", Default: VerdictValid, Visible: true},
		},
	},
	SectionSpec{
		Name:  "etatElementsConfort",
		Title: "État éléments de confort",
		Leaves: []LeafSpec{
			{Name: "mousses", Label: "Mousses (ceinture, cuisse, bretelles)", Instructions: "Coupure/Usure/Déchirure", Default: VerdictValid, Visible: true},
			{Name: "passants", Label: "Passants élastiques et élastiques de cuisses", Instructions: "Coupure/Usure/Déchirure", Default: VerdictValid, Visible: true},
			{Name: "porteMateriel", Label: "Porte-matériel", Instructions: "Coupure/Usure/Déchirure", Default: VerdictValid, Visible: true},
		},
	},
	SectionSpec{
		Name:  "etatConnecteurTorseCuissard",
		Title: "État connecteur torse/cuissard",
		Leaves: []LeafSpec{
			{Name: "bloqueurCroll", Label: "Bloqueur ventral (si existant)", Instructions: "Corps (Fissure, Déformation, Usure) Gâchette (Usure des dents, Ressort) Corrosion", Default: VerdictNotApplicable, Visible: true},
		},
	},
	SectionSpec{
		Name:  "compatibiliteTorseCuissard",
		Title: "Compatibilité torse/cuissard",
		Leaves: []LeafSpec{
			{Name: "compatibilite", Label: "Compatibilité torse / cuissard", Instructions: "Compatibilité des éléments du torse et du cuissard (notice du fabricant)", Default: VerdictNotApplicable, Visible: true},
		},
	},
)
