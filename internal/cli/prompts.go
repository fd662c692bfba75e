package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/jfields/renewlens/internal/watchlist"
)

var tickerRe = regexp.MustCompile(`^[A-Z0-9.\-]+$`)

// PromptForTicker asks for a ticker, suggesting the watchlist.
func PromptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Ticker symbol (e.g., FSLR, ENPH, NEE):",
		Help:    "Any US-listed symbol works; the watchlist covers the renewable energy sector.",
		Suggest: func(toComplete string) []string {
			var matches []string
			upper := strings.ToUpper(toComplete)
			for _, t := range watchlist.Tickers() {
				if strings.HasPrefix(t, upper) {
					matches = append(matches, t)
				}
			}
			return matches
		},
	}

	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if str == "" {
			return fmt.Errorf("ticker cannot be empty")
		}
		if len(str) > 10 {
			return fmt.Errorf("ticker too long (max 10 characters)")
		}
		if !tickerRe.MatchString(str) {
			return fmt.Errorf("invalid ticker format")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ToUpper(ticker)), nil
}

// PromptForQuestion asks for a free-text query.
func PromptForQuestion() (string, error) {
	var question string
	prompt := &survey.Input{
		Message: "Your question:",
		Help:    `Try "show me FSLR's price chart" or "compare ENPH vs RUN performance".`,
	}

	err := survey.AskOne(prompt, &question, survey.WithValidator(survey.Required))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(question), nil
}

// PromptForMenuChoice shows the main interactive menu.
func PromptForMenuChoice() (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: "What would you like to do?",
		Options: []string{
			menuAnalyze,
			menuAnalyzeAll,
			menuAsk,
			menuDeltas,
			menuRunHistory,
			menuArchive,
			menuQuit,
		},
		PageSize: 7,
	}

	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

// PromptConfirm asks a yes/no question.
func PromptConfirm(message string, defaultYes bool) (bool, error) {
	confirmed := defaultYes
	prompt := &survey.Confirm{Message: message, Default: defaultYes}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}
