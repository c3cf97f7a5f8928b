package cmd

import (
	"encoding/json"
	"fmt"
)

// printResult renders result as indented JSON when --json is set, or
// otherwise passes it to textFn for a short human-readable summary.
func printResult(result interface{}, textFn func()) error {
	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	textFn()
	return nil
}

// printReport is printResult's richer sibling for commands that can also
// render a TOON-encoded report: JSON wins when --json is set, otherwise
// --toon prints toonText, and the text summary is the fallback.
func printReport(result interface{}, toonText string, textFn func()) error {
	if jsonOutput {
		return printResult(result, textFn)
	}
	if toonOutput {
		fmt.Println(toonText)
		return nil
	}
	textFn()
	return nil
}
