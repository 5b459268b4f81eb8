package core

import "fmt"

// Guide is the corrective template attached to an alert kind. LabelTemplate
// is a pure function of the reference and the counterparty name.
type Guide struct {
	Title            string                       `json:"title"`
	Action           string                       `json:"action"`
	SuggestedAccount string                       `json:"suggested_account"`
	LabelTemplate    func(ref, name string) string `json:"-"`
	CounterEntryHint string                       `json:"counter_entry_hint"`
}

// guidesByKind is declarative data; the detector never hard-codes guide
// logic. Selection is by kind first, then by localized title through
// kindByTitle.
var guidesByKind = map[AlertKind]Guide{
	KindFactureNonRapprochee: {
		Title:            "Facture non rapprochée",
		Action:           "Enregistrer l'encaissement ou le paiement de la facture sur le compte bancaire.",
		SuggestedAccount: "512200",
		LabelTemplate: func(ref, name string) string {
			return fmt.Sprintf("Encaissement %s - %s", ref, name)
		},
		CounterEntryHint: "Contrepartie sur le compte client ou fournisseur d'origine (411/401).",
	},
	KindChequeNonComptabilise: {
		Title:            "Chèque non comptabilisé",
		Action:           "Créer l'écriture d'émission du chèque au grand livre.",
		SuggestedAccount: "512200",
		LabelTemplate: func(ref, name string) string {
			return fmt.Sprintf("Chèque %s - %s", ref, name)
		},
		CounterEntryHint: "Contrepartie sur un compte de charge ou de fournisseur selon la nature du chèque.",
	},
	KindChequeEmisNonEncaisse: {
		Title:            "Chèque émis non encaissé",
		Action:           "Vérifier l'encaissement du chèque ou l'annuler s'il est périmé.",
		SuggestedAccount: "512200",
		LabelTemplate: func(ref, name string) string {
			return fmt.Sprintf("Encaissement chèque %s - %s", ref, name)
		},
		CounterEntryHint: "Contrepartie sur le compte d'attente ou le compte d'origine de l'émission.",
	},
	KindChequeEncaisseNonEmis: {
		Title:            "Chèque encaissé non émis",
		Action:           "Enregistrer l'écriture d'émission manquante sur le compte bancaire.",
		SuggestedAccount: "512200",
		LabelTemplate: func(ref, name string) string {
			return fmt.Sprintf("Émission chèque %s - %s", ref, name)
		},
		CounterEntryHint: "Contrepartie sur le compte client à l'origine du règlement (411).",
	},
	KindChequeIncoherent: {
		Title:            "Chèque incohérent",
		Action:           "Corriger le montant de l'écriture pour l'aligner sur le relevé bancaire.",
		SuggestedAccount: "512200",
		LabelTemplate: func(ref, name string) string {
			return fmt.Sprintf("Régularisation chèque %s - %s", ref, name)
		},
		CounterEntryHint: "L'écart passe en compte de charge ou de produit exceptionnel.",
	},
	KindEcartMontant: {
		Title:            "Écart de montant",
		Action:           "Ajuster l'écriture du grand livre sur le montant du relevé.",
		SuggestedAccount: "658000",
		LabelTemplate: func(ref, name string) string {
			return fmt.Sprintf("Régularisation écart %s - %s", ref, name)
		},
		CounterEntryHint: "Les écarts non récupérables passent en charges diverses de gestion courante (658).",
	},
	KindNumeroManquant: {
		Title:            "Numéro de document manquant",
		Action:           "Compléter le numéro de référence du document source.",
		SuggestedAccount: "411000",
		LabelTemplate: func(ref, name string) string {
			return fmt.Sprintf("Document %s - %s", ref, name)
		},
		CounterEntryHint: "Aucune contrepartie: correction du document source uniquement.",
	},
	KindJourNonOuvrable: {
		Title:            "Écriture un jour non ouvrable",
		Action:           "Vérifier la date de l'écriture et la justifier ou la corriger.",
		SuggestedAccount: "411000",
		LabelTemplate: func(ref, name string) string {
			return fmt.Sprintf("Vérification date %s - %s", ref, name)
		},
		CounterEntryHint: "Aucune contrepartie: contrôle de date uniquement.",
	},
	KindDoublonGrandLivre: {
		Title:            "Écriture en double",
		Action:           "Supprimer ou extourner l'écriture dupliquée.",
		SuggestedAccount: "658000",
		LabelTemplate: func(ref, name string) string {
			return fmt.Sprintf("Extourne doublon %s - %s", ref, name)
		},
		CounterEntryHint: "L'extourne reprend le compte de l'écriture d'origine.",
	},
}

// kindByTitle maps localized alert titles back to kinds for alerts whose
// kind field is absent or unknown.
var kindByTitle = map[string]AlertKind{
	"Facture non rapprochée":       KindFactureNonRapprochee,
	"Chèque non comptabilisé":      KindChequeNonComptabilise,
	"Chèque émis non encaissé":     KindChequeEmisNonEncaisse,
	"Chèque encaissé non émis":     KindChequeEncaisseNonEmis,
	"Chèque incohérent":            KindChequeIncoherent,
	"Écart de montant":             KindEcartMontant,
	"Numéro de document manquant":  KindNumeroManquant,
	"Écriture un jour non ouvrable": KindJourNonOuvrable,
	"Écriture en double":           KindDoublonGrandLivre,
}

// ResolveGuide selects the guide for an alert: direct lookup by kind, then
// lookup by localized title. Callers must handle the no-guide case.
func ResolveGuide(kind AlertKind, title string) (Guide, bool) {
	if g, ok := guidesByKind[kind]; ok {
		return g, true
	}
	if resolved, ok := kindByTitle[title]; ok {
		if g, ok := guidesByKind[resolved]; ok {
			return g, true
		}
	}
	return Guide{}, false
}

// GuideTitle returns the localized title for a kind, or the empty string
// when the kind has no guide.
func GuideTitle(kind AlertKind) string {
	return guidesByKind[kind].Title
}
