package i18n

// Translator retrieves localized messages for issue codes. data provides
// optional metadata to embed in the message (for example, "column" or
// "externalId").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "de":
		switch code {
		case "empty_header":
			return "Kopfzeile ist leer"
		case "empty_column":
			return "leerer Spaltenname in der Kopfzeile"
		case "duplicate_column":
			return "doppelte Spalte in der Kopfzeile"
		case "missing_column":
			return "Pflichtspalte fehlt"
		case "unknown_column":
			return "unbekannte Spalte"
		case "row_width":
			return "Zeile hat die falsche Spaltenanzahl"
		case "no_delimiter":
			return "kein Feldtrennzeichen gefunden"
		case "continuation_empty":
			return "Fortsetzungszeile enthält keine Array-Spalte"
		case "continuation_ambiguous":
			return "Fortsetzungszeile betrifft mehrere Arrays"
		case "continuation_field":
			return "nur Array-Spalten dürfen in einer Fortsetzungszeile gesetzt werden"
		case "required_field":
			return "Pflichtfeld fehlt oder ist leer"
		case "invalid_value":
			return "ungültiger Wert"
		case "related_columns":
			return "zusammengehörige Spalten müssen gemeinsam gesetzt werden"
		}
	default: // "en"
		switch code {
		case "empty_header":
			return "header row is empty"
		case "empty_column":
			return "empty column name in header"
		case "duplicate_column":
			return "duplicate column in header"
		case "missing_column":
			return "required column is missing"
		case "unknown_column":
			return "unknown column"
		case "row_width":
			return "row has the wrong number of cells"
		case "no_delimiter":
			return "no field delimiter found"
		case "continuation_empty":
			return "continuation row sets no array column"
		case "continuation_ambiguous":
			return "continuation row spans multiple arrays"
		case "continuation_field":
			return "only array columns may be set on a continuation row"
		case "required_field":
			return "required field is missing or empty"
		case "invalid_value":
			return "invalid value"
		case "related_columns":
			return "related columns must be set together"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"de").
func SetLanguage(lang string) {
	if lang != "de" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T translates an issue code using the current Translator.
func T(code string, data map[string]string) string {
	return currentTranslator.Message(code, data)
}
