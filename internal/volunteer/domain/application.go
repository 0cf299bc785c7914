package domain

import "strings"

func ParseReviewAction(value string) (ReviewAction, error) {
	switch ReviewAction(strings.ToLower(strings.TrimSpace(value))) {
	case ReviewApprove:
		return ReviewApprove, nil
	case ReviewReject:
		return ReviewReject, nil
	}
	return "", ErrInvalidReviewAction
}

// NextApplicationStatus applies a review decision. Both outcomes are
// terminal so only pendingReview accepts one.
func NextApplicationStatus(current ApplicationStatus, action ReviewAction) (ApplicationStatus, bool) {
	if current != ApplicationPendingReview {
		return current, false
	}
	switch action {
	case ReviewApprove:
		return ApplicationApproved, true
	case ReviewReject:
		return ApplicationRejected, true
	}
	return current, false
}

// NormalizeTags trims, lowercases and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
