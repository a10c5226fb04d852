package embedding

import "strings"

// Windows splits text into overlapping word windows of size words. Each step takes the window at
// the current offset plus one shifted forward by half a window, so neighbouring windows overlap
// and a clause split by one boundary is intact in the other. Text shorter than a window is
// returned as a single window.
func Windows(text string, size int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if size <= 0 || len(words) <= size {
		return []string{strings.Join(words, " ")}
	}

	half := size / 2
	var windows []string
	for index := 0; index < len(words); index += size {
		end := min(index+size, len(words))
		windows = append(windows, strings.Join(words[index:end], " "))

		if half > 0 && index+size+half <= len(words) {
			windows = append(windows, strings.Join(words[index+half:index+size+half], " "))
		}
	}
	return windows
}
