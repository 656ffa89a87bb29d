package views

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ajramos/mailcore/internal/mail"
)

// ReadStatus selects by read flag.
type ReadStatus string

const (
	ReadStatusAll    ReadStatus = "all"
	ReadStatusRead   ReadStatus = "read"
	ReadStatusUnread ReadStatus = "unread"
)

// SortKey selects the pipeline's final ordering.
type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortSubjectAZ    SortKey = "subject-az"
	SortSubjectZA    SortKey = "subject-za"
	SortSenderAZ     SortKey = "sender-az"
	SortSenderZA     SortKey = "sender-za"
	SortStarredFirst SortKey = "starred-first"
)

// IntentFilter selects by intent classification.
type IntentFilter string

const (
	IntentFilterAll           IntentFilter = "all"
	IntentFilterNew           IntentFilter = "new"
	IntentFilterMeetings      IntentFilter = "meetings"
	IntentFilterNotifications IntentFilter = "notifications"
	IntentFilterCampaigns     IntentFilter = "campaigns"
	IntentFilterSupport       IntentFilter = "support"
)

// DateRange is an optional inclusive bound on creation time. The To bound
// is treated as end-of-day.
type DateRange struct {
	From time.Time
	To   time.Time
}

// FilterOptions is the active view configuration. It is replaced wholesale
// on every change.
type FilterOptions struct {
	ReadStatus    ReadStatus
	Starred       bool
	HasAttachment bool
	SortBy        SortKey
	DateRange     DateRange
	Intent        IntentFilter
}

// DefaultFilters returns the configuration a fresh session starts with.
func DefaultFilters() FilterOptions {
	return FilterOptions{
		ReadStatus: ReadStatusAll,
		SortBy:     SortNewest,
		Intent:     IntentFilterAll,
	}
}

// intentSpec drives stage-4 intent matching: a strict tag for emails that
// carry a classification, keyword fallback for those that do not.
type intentSpec struct {
	tag      string
	keywords []string
}

var intentSpecs = map[IntentFilter]intentSpec{
	IntentFilterMeetings:      {tag: mail.IntentMeeting, keywords: []string{"meeting", "schedule", "appointment"}},
	IntentFilterNotifications: {tag: mail.IntentSystem, keywords: []string{"notification", "system", "alert"}},
	IntentFilterCampaigns:     {tag: mail.IntentAnnouncement, keywords: []string{"newsletter", "campaign", "marketing"}},
	IntentFilterSupport:       {tag: mail.IntentFeedback, keywords: []string{"support", "help", "issue"}},
}

// attachment keywords for the has-attachment heuristic over reply bodies
var attachmentKeywords = []string{"attach", "file", "document"}

// Input is the full tuple the pipeline derives a view from.
type Input struct {
	Emails  []mail.Email
	Deleted []mail.Email
	Labels  []mail.Label
	Rules   SectionRules
	Section string
	Search  string
	Filters FilterOptions
}

// Derive runs the five-stage transform: conversations, section filter,
// search filter, attribute filters, sort. The bin section is served from
// the deleted collection, so the active set is never touched for it. The
// result is a fresh slice the caller must treat as read-only.
func Derive(in Input) []mail.Email {
	var convs []mail.Email
	if in.Section == SectionBin {
		convs = Conversations(in.Deleted)
	} else {
		convs = FilterSection(Conversations(in.Emails), in.Section, in.Rules)
	}
	convs = FilterSearch(convs, in.Search, in.Labels)
	convs = FilterAttributes(convs, in.Filters)
	Sort(convs, in.Filters.SortBy)
	return convs
}

// Conversations turns raw emails into conversation roots, one per email,
// newest first as the stable baseline ordering.
func Conversations(emails []mail.Email) []mail.Email {
	out := make([]mail.Email, 0, len(emails))
	for _, e := range emails {
		e = e.Clone()
		if e.Messages == nil {
			e.Messages = []mail.ReplyMessage{}
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// FilterSection keeps conversations belonging to the active section. The
// bin section (handled by Derive from the deleted collection) and unknown
// keys yield an empty view.
func FilterSection(convs []mail.Email, section string, rules SectionRules) []mail.Email {
	pred, ok := rules.Predicate(section)
	if !ok {
		return nil
	}
	out := make([]mail.Email, 0, len(convs))
	for _, e := range convs {
		if pred(&e) {
			out = append(out, e)
		}
	}
	return out
}

// FilterSearch keeps conversations matching the query by case-insensitive
// substring over subject, sender, snippet, reply bodies and assigned label
// names. A blank query passes everything through. Label ids that no longer
// resolve are skipped.
func FilterSearch(convs []mail.Email, query string, labels []mail.Label) []mail.Email {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return convs
	}
	names := make(map[string]string, len(labels))
	for _, l := range labels {
		names[l.ID] = strings.ToLower(l.Name)
	}

	out := make([]mail.Email, 0, len(convs))
	for _, e := range convs {
		if matchesSearch(&e, query, names) {
			out = append(out, e)
		}
	}
	return out
}

func matchesSearch(e *mail.Email, query string, labelNames map[string]string) bool {
	if strings.Contains(strings.ToLower(e.Subject), query) ||
		strings.Contains(strings.ToLower(e.From), query) ||
		strings.Contains(strings.ToLower(e.Snippet), query) {
		return true
	}
	for _, m := range e.Messages {
		if strings.Contains(strings.ToLower(m.Content), query) {
			return true
		}
	}
	for _, id := range e.LabelIDs {
		if name, ok := labelNames[id]; ok && strings.Contains(name, query) {
			return true
		}
	}
	return false
}

// FilterAttributes applies the FilterOptions attribute filters (stage 4):
// read status, starred-only, has-attachment heuristic, date range and
// intent.
func FilterAttributes(convs []mail.Email, opts FilterOptions) []mail.Email {
	out := make([]mail.Email, 0, len(convs))
	for _, e := range convs {
		if matchesAttributes(&e, opts) {
			out = append(out, e)
		}
	}
	return out
}

func matchesAttributes(e *mail.Email, opts FilterOptions) bool {
	switch opts.ReadStatus {
	case ReadStatusRead:
		if !e.IsRead {
			return false
		}
	case ReadStatusUnread:
		if e.IsRead {
			return false
		}
	}
	if opts.Starred && !e.IsStarred {
		return false
	}
	if opts.HasAttachment && !hasAttachment(e) {
		return false
	}
	if !opts.DateRange.From.IsZero() && e.CreatedAt.Before(opts.DateRange.From) {
		return false
	}
	if !opts.DateRange.To.IsZero() {
		endOfDay := opts.DateRange.To.Truncate(24 * time.Hour).Add(24*time.Hour - time.Second)
		if e.CreatedAt.After(endOfDay) {
			return false
		}
	}
	return matchesIntent(e, opts.Intent)
}

func hasAttachment(e *mail.Email) bool {
	for _, m := range e.Messages {
		content := strings.ToLower(m.Content)
		for _, k := range attachmentKeywords {
			if strings.Contains(content, k) {
				return true
			}
		}
	}
	return false
}

// matchesIntent checks the literal intent tag against the fixed mapping;
// emails with no classification fall back to keyword search over
// subject + snippet.
func matchesIntent(e *mail.Email, filter IntentFilter) bool {
	if filter == IntentFilterAll {
		return true
	}
	tag := e.EffectiveIntent()
	if filter == IntentFilterNew {
		return tag == mail.IntentNew
	}
	spec, ok := intentSpecs[filter]
	if !ok {
		return true
	}
	if tag != mail.IntentNew {
		return tag == spec.tag
	}
	content := strings.ToLower(e.Subject + " " + e.Snippet)
	for _, k := range spec.keywords {
		if strings.Contains(content, k) {
			return true
		}
	}
	return false
}

// Sort orders conversations in place by the selected key. Subject and
// sender comparisons are locale-aware; starred-first puts starred mail
// ahead and is newest-first within each group.
func Sort(convs []mail.Email, key SortKey) {
	var coll *collate.Collator
	switch key {
	case SortSubjectAZ, SortSubjectZA, SortSenderAZ, SortSenderZA:
		coll = collate.New(language.Und, collate.IgnoreCase)
	}

	sort.SliceStable(convs, func(i, j int) bool {
		a, b := &convs[i], &convs[j]
		switch key {
		case SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortSubjectAZ:
			return coll.CompareString(a.Subject, b.Subject) < 0
		case SortSubjectZA:
			return coll.CompareString(b.Subject, a.Subject) < 0
		case SortSenderAZ:
			return coll.CompareString(a.From, b.From) < 0
		case SortSenderZA:
			return coll.CompareString(b.From, a.From) < 0
		case SortStarredFirst:
			if a.IsStarred != b.IsStarred {
				return a.IsStarred
			}
			return a.CreatedAt.After(b.CreatedAt)
		default: // SortNewest
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}
