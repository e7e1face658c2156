package model

import (
	"net/url"
	"strings"
)

// Source classifies where a posting was found. The set is closed: every
// accepted candidate carries one of the constants below.
type Source string

const (
	SourceLinkedIn         Source = "LinkedIn"
	SourceIndeed           Source = "Indeed"
	SourceGlassdoor        Source = "Glassdoor"
	SourceMonster          Source = "Monster"
	SourceGreenhouse       Source = "Greenhouse"
	SourceLever            Source = "Lever"
	SourceWorkday          Source = "Workday"
	SourceAshby            Source = "Ashby"
	SourceBambooHR         Source = "BambooHR"
	SourceSmartRecruiters  Source = "SmartRecruiters"
	SourceJobvite          Source = "Jobvite"
	SourceRemoteRocketship Source = "RemoteRocketship"
	SourceCareerPage       Source = "Company Career Page"
	SourceUnknown          Source = "Unknown"
)

// siteRule maps a link substring to a Source.
type siteRule struct {
	pattern string
	source  Source
}

// siteRules is checked in order; the first matching pattern wins. ATS hosts
// come before job boards so an ATS link mirrored on a board keeps its ATS label.
var siteRules = []siteRule{
	{"greenhouse.io", SourceGreenhouse},
	{"lever.co", SourceLever},
	{"myworkdayjobs.com", SourceWorkday},
	{"workday.com", SourceWorkday},
	{"ashbyhq.com", SourceAshby},
	{"smartrecruiters.com", SourceSmartRecruiters},
	{"bamboohr.com", SourceBambooHR},
	{"jobvite.com", SourceJobvite},
	{"linkedin.com", SourceLinkedIn},
	{"indeed.com", SourceIndeed},
	{"glassdoor.com", SourceGlassdoor},
	{"monster.com", SourceMonster},
	{"remoterocketship.com", SourceRemoteRocketship},
}

// IsJobSite reports whether link contains any known job-site domain.
func IsJobSite(link string) bool {
	l := strings.ToLower(link)
	for _, r := range siteRules {
		if strings.Contains(l, r.pattern) {
			return true
		}
	}
	return false
}

// ClassifyLink derives the Source for a link. Links that match no known site
// are a company career page when the path or host looks like one, otherwise Unknown.
func ClassifyLink(link string) Source {
	l := strings.ToLower(link)
	for _, r := range siteRules {
		if strings.Contains(l, r.pattern) {
			return r.source
		}
	}
	if looksLikeCareerPage(l) {
		return SourceCareerPage
	}
	return SourceUnknown
}

func looksLikeCareerPage(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return strings.Contains(link, "/careers") || strings.Contains(link, "/jobs")
	}
	host := strings.TrimPrefix(u.Host, "www.")
	if strings.HasPrefix(host, "careers.") || strings.HasPrefix(host, "jobs.") {
		return true
	}
	return strings.Contains(u.Path, "/careers") || strings.Contains(u.Path, "/jobs")
}

// sourcePriority decides which duplicate survives a merge.
var sourcePriority = map[Source]int{
	SourceGreenhouse:       10,
	SourceWorkday:          10,
	SourceLever:            9,
	SourceAshby:            8,
	SourceSmartRecruiters:  8,
	SourceBambooHR:         8,
	SourceJobvite:          8,
	SourceLinkedIn:         7,
	SourceCareerPage:       6,
	SourceIndeed:           5,
	SourceGlassdoor:        4,
	SourceMonster:          3,
	SourceRemoteRocketship: 2,
	SourceUnknown:          1,
}

// SourcePriority returns the merge priority of s. Higher wins.
func SourcePriority(s Source) int {
	return sourcePriority[s]
}

var sourceQualityBonus = map[Source]int{
	SourceGreenhouse:       10,
	SourceLinkedIn:         10,
	SourceWorkday:          10,
	SourceLever:            9,
	SourceAshby:            8,
	SourceSmartRecruiters:  7,
	SourceBambooHR:         7,
	SourceJobvite:          7,
	SourceCareerPage:       6,
	SourceIndeed:           5,
	SourceGlassdoor:        4,
	SourceMonster:          3,
	SourceRemoteRocketship: 3,
	SourceUnknown:          2,
}

// SourceQualityBonus returns the relevance bonus for s.
func SourceQualityBonus(s Source) int {
	if b, ok := sourceQualityBonus[s]; ok {
		return b
	}
	return sourceQualityBonus[SourceUnknown]
}
