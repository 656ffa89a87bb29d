package views

import "github.com/ajramos/mailcore/internal/mail"

// countQualifier picks which emails a section counts once membership is
// established.
type countQualifier int

const (
	countAll countQualifier = iota
	countUnread
)

// EmailCounts maps section keys to badge counts for the navigation surface.
type EmailCounts map[string]int

// Aggregate recomputes every section and label count from scratch. Fixed
// sections count all qualifying mail (inbox: active, starred: starred,
// bin: soft-deleted); label sections count unread matches only. The
// search and attribute filters are deliberately ignored: counts reflect
// totals, not the current view.
func Aggregate(emails, deleted []mail.Email, labels []mail.Label, rules SectionRules) EmailCounts {
	counts := EmailCounts{
		SectionInbox:   0,
		SectionStarred: 0,
		SectionSnoozed: 0,
		SectionBin:     0,
	}

	for i := range emails {
		e := &emails[i]
		if !e.IsDeleted {
			counts[SectionInbox]++
		}
		if e.IsStarred {
			counts[SectionStarred]++
		}
	}
	for i := range deleted {
		if deleted[i].IsDeleted {
			counts[SectionBin]++
		}
	}

	for _, label := range labels {
		var key string
		var pred SectionPredicate
		if label.IsSystem {
			key = SystemLabelSection(label.ID)
			rule, ok := rules[label.ID]
			if !ok {
				// Stale or heuristic-less system label: assignment only.
				id := label.ID
				pred = func(e *mail.Email) bool { return e.HasLabel(id) }
			} else {
				pred = rule.Matches
			}
		} else {
			key = CustomLabelSection(label.ID)
			id := label.ID
			pred = func(e *mail.Email) bool { return e.HasLabel(id) }
		}
		counts[key] = countMatching(emails, pred, countUnread)
	}

	return counts
}

func countMatching(emails []mail.Email, pred SectionPredicate, qual countQualifier) int {
	n := 0
	for i := range emails {
		e := &emails[i]
		if !pred(e) {
			continue
		}
		if qual == countUnread && e.IsRead {
			continue
		}
		n++
	}
	return n
}
