package domain

// Question is a static catalog entry.
type Question struct {
	ID         int      `json:"id"`
	Text       string   `json:"text"`
	YesReasons []string `json:"yesReasons"`
	NoReasons  []string `json:"noReasons"`
}

// ReasonsFor returns the reason options offered for an answer.
func (q Question) ReasonsFor(a Answer) []string {
	if a == AnswerYes {
		return q.YesReasons
	}
	return q.NoReasons
}

// Catalog returns a fresh copy of the ten fixed quiz questions.
func Catalog() []Question {
	out := make([]Question, len(catalog))
	for i, q := range catalog {
		out[i] = Question{
			ID:         q.ID,
			Text:       q.Text,
			YesReasons: append([]string(nil), q.YesReasons...),
			NoReasons:  append([]string(nil), q.NoReasons...),
		}
	}
	return out
}

// FindQuestion looks up a question by id in qs.
func FindQuestion(qs []Question, id int) (Question, error) {
	for _, q := range qs {
		if q.ID == id {
			return q, nil
		}
	}
	return Question{}, ErrQuestionNotFound
}

var catalog = []Question{
	{
		ID:         1,
		Text:       "Nutze ich regelmässig den ÖV, das Velo oder gehe zu Fuss statt mit dem Auto zu fahren?",
		YesReasons: []string{"spart CO₂", "ist günstiger", "fördert die Gesundheit"},
		NoReasons:  []string{"keine passende Verbindung", "Zeitdruck", "körperliche Einschränkungen"},
	},
	{
		ID:         2,
		Text:       "Kaufe ich Lebensmittel oder Produkte aus regionaler Herkunft?",
		YesReasons: []string{"kurze Transportwege", "Unterstützung lokaler Produzenten", "frischere Produkte"},
		NoReasons:  []string{"höhere Preise", "eingeschränkte Auswahl", "fehlende Verfügbarkeit"},
	},
	{
		ID:         3,
		Text:       "Schalte ich elektrische Geräte und Licht aus, wenn ich sie nicht brauche?",
		YesReasons: []string{"senkt Stromverbrauch", "spart Kosten", "verlängert Lebensdauer der Geräte"},
		NoReasons:  []string{"Bequemlichkeit", "Geräte schwer erreichbar", "Gewohnheit"},
	},
	{
		ID:         4,
		Text:       "Stelle ich die Heizung im Winter nicht höher als nötig?",
		YesReasons: []string{"spart Energie", "reduziert Heizkosten", "fördert bewusstes Wohnen"},
		NoReasons:  []string{"hoher Wärmebedarf", "schlechte Isolation", "Komfort wichtiger"},
	},
	{
		ID:         5,
		Text:       "Verkürze ich meine Duschzeit, um Wasser zu sparen?",
		YesReasons: []string{"spart Wasser", "spart Energie fürs Erwärmen", "schont die Umwelt"},
		NoReasons:  []string{"Entspannung wichtig", "Gewohnheit", "kein Bewusstsein für Wasserverbrauch"},
	},
	{
		ID:         6,
		Text:       "Kaufe ich Kleidung nur, wenn ich sie wirklich brauche?",
		YesReasons: []string{"vermeidet Überproduktion", "spart Geld", "weniger Abfall"},
		NoReasons:  []string{"Modeinteresse", "Impulskäufe", "günstige Preise verleiten"},
	},
	{
		ID:         7,
		Text:       "Verwende ich Mehrwegflaschen, Taschen oder Behälter anstelle von Einwegprodukten?",
		YesReasons: []string{"reduziert Müll", "spart Ressourcen", "langfristig günstiger"},
		NoReasons:  []string{"Spontankäufe", "fehlende Mitnahme", "Einweg praktischer"},
	},
	{
		ID:         8,
		Text:       "Esse ich mindestens an einigen Tagen pro Woche kein Fleisch?",
		YesReasons: []string{"geringerer CO₂‑Fussabdruck", "gesünder", "Tierwohl"},
		NoReasons:  []string{"Gewohnheit", "Geschmack", "Mangel an Alternativen"},
	},
	{
		ID:         9,
		Text:       "Vermeide ich unnötige Flugreisen?",
		YesReasons: []string{"weniger CO₂‑Emissionen", "Stressvermeidung", "Förderung lokaler Reisen"},
		NoReasons:  []string{"Beruf erfordert Flüge", "Familienbesuche", "fehlende Alternativen"},
	},
	{
		ID:         10,
		Text:       "Trenne ich meinen Abfall und recycle konsequent?",
		YesReasons: []string{"schont Ressourcen", "reduziert Restmüll", "unterstützt Kreislaufwirtschaft"},
		NoReasons:  []string{"zu aufwendig", "fehlende Infrastruktur", "Unklarheit bei der Trennung"},
	},
}
