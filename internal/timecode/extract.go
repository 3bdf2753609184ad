package timecode

import "regexp"

// candidateRe matches timestamp-shaped substrings: 1-2 digits followed by one
// or two more 1-2 digit groups separated by ':' or '.'.
var candidateRe = regexp.MustCompile(`\d{1,2}(?:[:.]\d{1,2}){1,2}`)

// youtubeRe matches YouTube watch pages, short links, shorts and live paths.
// Scheme and www. prefix are both optional. The tail after the video ID must
// not end in punctuation that typically wraps a URL in prose, so
// "(https://youtu.be/abc)" yields the URL without the closing paren.
var youtubeRe = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:watch\?v=|shorts/|live/)[a-zA-Z0-9_-]+(?:[^\s]*[^\s).,])?|youtu\.be/[a-zA-Z0-9_-]+(?:[^\s]*[^\s).,])?)`)

// ExtractPair scans text for timestamp candidates and returns the first two,
// in order of appearance, as the start and end of a range. It reports ok=false
// when fewer than two candidates exist or either fails to normalize; there is
// no partial interpretation.
func ExtractPair(text string) (start, end Timestamp, ok bool) {
	matches := candidateRe.FindAllString(text, 2)
	if len(matches) < 2 {
		return Timestamp{}, Timestamp{}, false
	}

	start, err := Normalize(matches[0])
	if err != nil {
		return Timestamp{}, Timestamp{}, false
	}
	end, err = Normalize(matches[1])
	if err != nil {
		return Timestamp{}, Timestamp{}, false
	}

	return start, end, true
}

// ExtractURL returns the first YouTube URL found in text, exactly as it
// appears there. The match is passed verbatim to the download tool, so no
// re-normalization happens here.
func ExtractURL(text string) (string, bool) {
	m := youtubeRe.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}
