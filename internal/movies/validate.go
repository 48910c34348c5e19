package movies

import "strings"

const (
	imdbIDMaxLength = 20
	nameMaxLength   = 255
	ratingMin       = 1
	ratingMax       = 10
)

const (
	msgImdbIDBlank   = "IMDB id cannot be null or blank"
	msgImdbIDLength  = "IMDB id must be between 1 and 20 characters"
	msgNameBlank     = "Name cannot be null or blank"
	msgNameLength    = "Name must be between 1 and 255 characters"
	msgSeenAndRating = "If movie is not seen then rating cannot be set and if movie is seen then rating must be between 1 and 10"
)

// Validate checks a candidate movie against every field rule and the
// seen/rating coupling. A nil return means the movie may be persisted; a
// non-nil return is a *ValidationError listing all violated rules in field
// order.
func Validate(movie Movie) error {
	var violations []string

	if strings.TrimSpace(movie.ImdbID) == "" {
		violations = append(violations, msgImdbIDBlank)
	} else if len(movie.ImdbID) > imdbIDMaxLength {
		violations = append(violations, msgImdbIDLength)
	}

	if strings.TrimSpace(movie.Name) == "" {
		violations = append(violations, msgNameBlank)
	} else if len(movie.Name) > nameMaxLength {
		violations = append(violations, msgNameLength)
	}

	if !seenAndRatingConsistent(movie.Seen, movie.Rating) {
		violations = append(violations, msgSeenAndRating)
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// seenAndRatingConsistent holds the cross-field invariant: a seen movie
// carries a rating in [1,10], an unseen movie carries no rating at all.
func seenAndRatingConsistent(seen bool, rating int) bool {
	if seen {
		return rating >= ratingMin && rating <= ratingMax
	}
	return rating == 0
}
