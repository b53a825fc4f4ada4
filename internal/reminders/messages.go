package reminders

import (
	"fmt"
	"strings"

	"aerial/internal/catalog"
	"aerial/internal/language"
)

// showTitle prefers the localized title a viewer saw in the guide.
func showTitle(show *catalog.ShowData) string {
	if show == nil {
		return ""
	}
	if show.LocalizedTitle != nil && *show.LocalizedTitle != "" {
		return *show.LocalizedTitle
	}
	if show.OriginalTitle != nil {
		return *show.OriginalTitle
	}
	return show.SearchTitle
}

func episodeTag(session catalog.ShowSession) string {
	if session.Season == nil || session.Episode == nil {
		return ""
	}
	return fmt.Sprintf(" T%d Ep. %d", *session.Season, *session.Episode)
}

func reminderMessage(due catalog.ReminderDue, show *catalog.ShowData, channelName, lang string) (subject, body string) {
	title := showTitle(show) + episodeTag(due.Session)
	when := due.Session.DateTime.UTC().Format("02/01/2006 15:04")
	if language.IsPortuguese(lang) {
		subject = fmt.Sprintf("Lembrete: %s", title)
		body = fmt.Sprintf("%s vai passar no canal %s a %s (UTC).", title, channelName, when)
		if audio := audioName(due.Session, lang); audio != "" {
			body += fmt.Sprintf(" Áudio: %s.", audio)
		}
		return subject, body
	}
	subject = fmt.Sprintf("Reminder: %s", title)
	body = fmt.Sprintf("%s airs on %s at %s (UTC).", title, channelName, when)
	if audio := audioName(due.Session, lang); audio != "" {
		body += fmt.Sprintf(" Audio: %s.", audio)
	}
	return subject, body
}

// audioName renders a session's audio language, "" when the guide did
// not announce one.
func audioName(session catalog.ShowSession, recipientLanguage string) string {
	if session.AudioLanguage == nil {
		return ""
	}
	return language.DisplayName(*session.AudioLanguage, recipientLanguage)
}

func sessionRemovedMessage(due catalog.ReminderDue, show *catalog.ShowData, channelName, lang string) (subject, body string) {
	title := showTitle(show) + episodeTag(due.Session)
	when := due.Session.DateTime.UTC().Format("02/01/2006 15:04")
	if language.IsPortuguese(lang) {
		subject = fmt.Sprintf("Sessão cancelada: %s", title)
		body = fmt.Sprintf("A sessão de %s no canal %s a %s (UTC) foi removida da grelha.", title, channelName, when)
		return subject, body
	}
	subject = fmt.Sprintf("Session removed: %s", title)
	body = fmt.Sprintf("The airing of %s on %s at %s (UTC) was dropped from the schedule.", title, channelName, when)
	return subject, body
}

func alarmMessage(matches []catalog.SessionWithShow, lang string) (subject, body string) {
	lines := make([]string, 0, len(matches))
	for _, match := range matches {
		title := showTitle(&match.Show) + episodeTag(match.Session)
		when := match.Session.DateTime.UTC().Format("02/01/2006 15:04")
		lines = append(lines, fmt.Sprintf("- %s, %s, %s (UTC)", title, match.ChannelName, when))
	}
	if language.IsPortuguese(lang) {
		subject = "Novas sessões que correspondem aos seus alarmes"
		body = "Foram adicionadas sessões que correspondem aos seus alarmes:\n" + strings.Join(lines, "\n")
		return subject, body
	}
	subject = "New sessions matching your alarms"
	body = "Sessions matching your alarms were added:\n" + strings.Join(lines, "\n")
	return subject, body
}
