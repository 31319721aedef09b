package localiser

var messages = map[string]map[string]string{
	"en-US": {
		"purge.usage":             "Usage: /purge <start message ID> [end message ID] [author]",
		"purge.ids_not_different": "The start and end message IDs must be different.",
		"purge.invalid_start":     "The start message ID does not exist in this channel or lies in the future.",
		"purge.invalid_end":       "The end message ID does not exist in this channel or lies in the future.",
		"purge.invalid_both":      "Neither message ID exists in this channel.",
		"purge.indexing":          "Indexing messages…",
		"purge.progress":          "Indexing messages… %d found so far.",
		"purge.too_large":         "That range spans more than %d messages. Narrow it down and try again.",
		"purge.too_many":          "Found %d messages, more than the %d this command may delete. Delete only the first %[2]d?",
		"purge.confirm":           "About to delete %d messages. Are you sure?",
		"purge.cancelled":         "Purge cancelled, nothing was deleted.",
		"purge.summary":           "Deleted %d of %d messages.",

		"report.open":                       "Press the button to open the report form.",
		"report.open_button":                "Open report form",
		"report.title":                      "File a report",
		"report.subject":                    "Subject",
		"report.details":                    "Details",
		"report.filed":                      "Thank you, your report has been filed.",
		"report.retry":                      "Edit report",
		"report.discard":                    "Discard",
		"report.invalid.subject_required":   "The report needs a subject. Edit and resubmit?",
		"report.invalid.details_too_short":  "Please describe the issue in at least 20 characters. Edit and resubmit?",

		"help.title":          "Command reference (page %d of %d)",
		"help.empty":          "No commands are registered.",
		"help.command.help":   "show this overview",
		"help.command.purge":  "bulk-delete a range of messages",
		"help.command.report": "file a report with the moderators",

		"tickets.empty":        "No tickets have been filed yet.",
		"tickets.title":        "Open tickets (page %d of %d)",
		"help.command.tickets": "browse filed tickets",
	},
	"de-DE": {
		"purge.usage":             "Verwendung: /purge <Start-Nachrichten-ID> [End-Nachrichten-ID] [Autor]",
		"purge.ids_not_different": "Start- und End-Nachrichten-ID müssen sich unterscheiden.",
		"purge.invalid_start":     "Die Start-Nachrichten-ID existiert in diesem Kanal nicht oder liegt in der Zukunft.",
		"purge.invalid_end":       "Die End-Nachrichten-ID existiert in diesem Kanal nicht oder liegt in der Zukunft.",
		"purge.invalid_both":      "Keine der beiden Nachrichten-IDs existiert in diesem Kanal.",
		"purge.indexing":          "Nachrichten werden indiziert…",
		"purge.progress":          "Nachrichten werden indiziert… bisher %d gefunden.",
		"purge.too_large":         "Dieser Bereich umfasst mehr als %d Nachrichten. Bitte eingrenzen und erneut versuchen.",
		"purge.too_many":          "%d Nachrichten gefunden, mehr als die %d, die dieser Befehl löschen darf. Nur die ersten %[2]d löschen?",
		"purge.confirm":           "Es werden %d Nachrichten gelöscht. Sicher?",
		"purge.cancelled":         "Löschen abgebrochen, es wurde nichts entfernt.",
		"purge.summary":           "%d von %d Nachrichten gelöscht.",

		"report.open":                      "Drücke den Knopf, um das Meldeformular zu öffnen.",
		"report.open_button":               "Meldeformular öffnen",
		"report.title":                     "Meldung einreichen",
		"report.subject":                   "Betreff",
		"report.details":                   "Details",
		"report.filed":                     "Danke, deine Meldung wurde eingereicht.",
		"report.retry":                     "Meldung bearbeiten",
		"report.discard":                   "Verwerfen",
		"report.invalid.subject_required":  "Die Meldung braucht einen Betreff. Bearbeiten und erneut senden?",
		"report.invalid.details_too_short": "Bitte beschreibe das Problem mit mindestens 20 Zeichen. Bearbeiten und erneut senden?",

		"help.title":          "Befehlsübersicht (Seite %d von %d)",
		"help.empty":          "Es sind keine Befehle registriert.",
		"help.command.help":   "diese Übersicht anzeigen",
		"help.command.purge":  "einen Nachrichtenbereich löschen",
		"help.command.report": "eine Meldung an die Moderation senden",

		"tickets.empty":        "Es wurden noch keine Meldungen eingereicht.",
		"tickets.title":        "Offene Meldungen (Seite %d von %d)",
		"help.command.tickets": "eingereichte Meldungen durchsehen",
	},
}
