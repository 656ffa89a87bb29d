package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajramos/mailcore/internal/mail"
)

var pipelineBase = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func pipelineEmail(id string, offset time.Duration) mail.Email {
	return mail.Email{
		ID:        id,
		From:      id + "@example.com",
		Subject:   "subject " + id,
		Snippet:   "snippet " + id,
		CreatedAt: pipelineBase.Add(offset),
		Intent:    mail.IntentNew,
	}
}

func deriveInbox(emails []mail.Email, search string, filters FilterOptions) []mail.Email {
	return Derive(Input{
		Emails:  emails,
		Rules:   DefaultSectionRules(),
		Section: SectionInbox,
		Search:  search,
		Filters: filters,
	})
}

func idsOf(convs []mail.Email) []string {
	out := make([]string, 0, len(convs))
	for _, c := range convs {
		out = append(out, c.ID)
	}
	return out
}

func TestDerive_DefaultOrderIsNewestFirst(t *testing.T) {
	emails := []mail.Email{
		pipelineEmail("t1", 0),
		pipelineEmail("t3", 2*time.Hour),
		pipelineEmail("t2", time.Hour),
	}

	got := deriveInbox(emails, "", DefaultFilters())
	assert.Equal(t, []string{"t3", "t2", "t1"}, idsOf(got))
}

func TestDerive_OldestReversesNewest(t *testing.T) {
	emails := []mail.Email{
		pipelineEmail("t1", 0),
		pipelineEmail("t3", 2*time.Hour),
		pipelineEmail("t2", time.Hour),
	}

	filters := DefaultFilters()
	filters.SortBy = SortOldest
	got := deriveInbox(emails, "", filters)
	assert.Equal(t, []string{"t1", "t2", "t3"}, idsOf(got))
}

func TestDerive_IsIdempotentOnItsOutput(t *testing.T) {
	emails := []mail.Email{
		pipelineEmail("a", 0),
		pipelineEmail("b", time.Hour),
		pipelineEmail("c", 2*time.Hour),
	}
	filters := DefaultFilters()
	filters.ReadStatus = ReadStatusUnread

	once := deriveInbox(emails, "snippet", filters)
	twice := deriveInbox(once, "snippet", filters)
	assert.Equal(t, once, twice)
}

func TestFilterSection_BinServedFromDeleted(t *testing.T) {
	active := []mail.Email{pipelineEmail("a", 0)}
	binned := pipelineEmail("d", time.Hour)
	binned.IsDeleted = true

	got := Derive(Input{
		Emails:  active,
		Deleted: []mail.Email{binned},
		Rules:   DefaultSectionRules(),
		Section: SectionBin,
		Filters: DefaultFilters(),
	})
	assert.Equal(t, []string{"d"}, idsOf(got))
}

func TestFilterSection_UnknownSectionIsEmpty(t *testing.T) {
	got := Derive(Input{
		Emails:  []mail.Email{pipelineEmail("a", 0)},
		Rules:   DefaultSectionRules(),
		Section: "bogus",
		Filters: DefaultFilters(),
	})
	assert.Empty(t, got)
}

func TestFilterSearch_MatchesAcrossFields(t *testing.T) {
	a := pipelineEmail("a", 0)
	a.Subject = "Quarterly Report"
	b := pipelineEmail("b", time.Hour)
	b.Messages = []mail.ReplyMessage{{ID: "m1", Sender: "x", Content: "see the quarterly numbers"}}
	c := pipelineEmail("c", 2*time.Hour)
	c.LabelIDs = []string{"l1"}
	d := pipelineEmail("d", 3*time.Hour)

	labels := []mail.Label{{ID: "l1", Name: "Quarterly"}}

	got := FilterSearch(Conversations([]mail.Email{a, b, c, d}), "  QUARTERLY ", labels)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, idsOf(got))
}

func TestFilterSearch_SkipsStaleLabelIDs(t *testing.T) {
	a := pipelineEmail("a", 0)
	a.LabelIDs = []string{"gone"}

	got := FilterSearch([]mail.Email{a}, "quarterly", nil)
	assert.Empty(t, got)
}

func TestFilterAttributes_ReadStatusAndStarred(t *testing.T) {
	read := pipelineEmail("read", 0)
	read.IsRead = true
	starred := pipelineEmail("starred", time.Hour)
	starred.IsStarred = true
	plain := pipelineEmail("plain", 2*time.Hour)

	convs := []mail.Email{read, starred, plain}

	opts := DefaultFilters()
	opts.ReadStatus = ReadStatusUnread
	assert.ElementsMatch(t, []string{"starred", "plain"}, idsOf(FilterAttributes(convs, opts)))

	opts = DefaultFilters()
	opts.ReadStatus = ReadStatusRead
	assert.ElementsMatch(t, []string{"read"}, idsOf(FilterAttributes(convs, opts)))

	opts = DefaultFilters()
	opts.Starred = true
	assert.ElementsMatch(t, []string{"starred"}, idsOf(FilterAttributes(convs, opts)))
}

func TestFilterAttributes_AttachmentHeuristic(t *testing.T) {
	with := pipelineEmail("with", 0)
	with.Messages = []mail.ReplyMessage{{ID: "m1", Content: "I attached the contract"}}
	without := pipelineEmail("without", time.Hour)
	without.Messages = []mail.ReplyMessage{{ID: "m2", Content: "sounds good"}}

	opts := DefaultFilters()
	opts.HasAttachment = true
	got := FilterAttributes([]mail.Email{with, without}, opts)
	assert.Equal(t, []string{"with"}, idsOf(got))
}

func TestFilterAttributes_DateRangeToIsEndOfDay(t *testing.T) {
	morning := pipelineEmail("morning", 0) // 12:00 on Mar 1
	lateNight := pipelineEmail("late", 11*time.Hour+50*time.Minute)
	nextDay := pipelineEmail("next", 24*time.Hour)

	opts := DefaultFilters()
	opts.DateRange = DateRange{
		From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	got := FilterAttributes([]mail.Email{morning, lateNight, nextDay}, opts)
	assert.ElementsMatch(t, []string{"morning", "late"}, idsOf(got))
}

func TestMatchesIntent_TaggedEmailsMatchStrictly(t *testing.T) {
	meeting := pipelineEmail("meeting", 0)
	meeting.Intent = mail.IntentMeeting
	system := pipelineEmail("system", time.Hour)
	system.Intent = mail.IntentSystem

	opts := DefaultFilters()
	opts.Intent = IntentFilterMeetings
	got := FilterAttributes([]mail.Email{meeting, system}, opts)
	assert.Equal(t, []string{"meeting"}, idsOf(got))
}

func TestMatchesIntent_UntaggedFallsBackToKeywords(t *testing.T) {
	untaggedMatch := pipelineEmail("hit", 0)
	untaggedMatch.Subject = "Schedule our sync"
	untaggedMiss := pipelineEmail("miss", time.Hour)
	untaggedMiss.Subject = "lunch?"
	tagged := pipelineEmail("tagged", 2*time.Hour)
	tagged.Intent = mail.IntentSystem
	tagged.Subject = "meeting reminder" // tag wins over keywords

	opts := DefaultFilters()
	opts.Intent = IntentFilterMeetings
	got := FilterAttributes([]mail.Email{untaggedMatch, untaggedMiss, tagged}, opts)
	assert.Equal(t, []string{"hit"}, idsOf(got))
}

func TestMatchesIntent_NewSelectsUnclassifiedOnly(t *testing.T) {
	fresh := pipelineEmail("fresh", 0)
	classified := pipelineEmail("classified", time.Hour)
	classified.Intent = mail.IntentAnnouncement

	opts := DefaultFilters()
	opts.Intent = IntentFilterNew
	got := FilterAttributes([]mail.Email{fresh, classified}, opts)
	assert.Equal(t, []string{"fresh"}, idsOf(got))
}

func TestSort_SubjectIsCaseInsensitive(t *testing.T) {
	a := pipelineEmail("a", 0)
	a.Subject = "banana"
	b := pipelineEmail("b", time.Hour)
	b.Subject = "Apple"
	c := pipelineEmail("c", 2*time.Hour)
	c.Subject = "cherry"

	convs := []mail.Email{a, b, c}
	Sort(convs, SortSubjectAZ)
	assert.Equal(t, []string{"b", "a", "c"}, idsOf(convs))

	Sort(convs, SortSubjectZA)
	assert.Equal(t, []string{"c", "a", "b"}, idsOf(convs))
}

func TestSort_StarredFirstBreaksTiesByRecency(t *testing.T) {
	oldStar := pipelineEmail("old-star", 0)
	oldStar.IsStarred = true
	newStar := pipelineEmail("new-star", 3*time.Hour)
	newStar.IsStarred = true
	newest := pipelineEmail("newest", 4*time.Hour)

	convs := []mail.Email{newest, oldStar, newStar}
	Sort(convs, SortStarredFirst)
	assert.Equal(t, []string{"new-star", "old-star", "newest"}, idsOf(convs))
}

func TestConversations_NormalizesMessagesAndCopies(t *testing.T) {
	raw := pipelineEmail("a", 0)
	raw.Messages = nil
	in := []mail.Email{raw}

	got := Conversations(in)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Messages)

	got[0].Subject = "mutated"
	assert.Equal(t, "subject a", in[0].Subject)
}
