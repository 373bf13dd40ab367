package sync

import "github.com/watchdeck/watchdeck/internal/utils"

// DetectCollection maps a root-relative path to the collection it is shown
// under on the dashboard. Three positional cases:
//
//	outputs/<kind>/<collection>/...  ->  <collection>
//	prompts/<method>/...             ->  <method>
//	anything else                    ->  parent directory name
//
// A bare file name has no parent to name, so it lands in "unknown".
func DetectCollection(relPath string) string {
	segs := utils.PathSegments(relPath)

	if len(segs) >= 3 && segs[0] == "outputs" {
		return segs[2]
	}
	if len(segs) >= 2 && segs[0] == "prompts" {
		return segs[1]
	}
	if len(segs) > 1 {
		return segs[len(segs)-2]
	}
	return "unknown"
}
