package login

import (
	"errors"
	"fmt"
	"time"

	"telegate/pkg/browser"
)

// Selector candidates for the login-by-phone affordance on the Telegram
// Web entry page, tried in order. The markup has shifted between client
// builds; the broader candidates keep the flow working across them.
var loginButtonSelectors = []string{
	"//button[contains(text(), 'Log in by phone Number')]",
	"//button[contains(text(), 'Log in by phone')]",
	"//button[contains(., 'phone')]",
	"//button[contains(@class, 'auth-button')]",
	"//button[contains(@class, 'primary')]",
	"//div[contains(@class, 'button') and contains(text(), 'Log in')]",
}

// Selector candidates for the submit button after the phone number has
// been entered.
var nextButtonSelectors = []string{
	"//button[contains(text(), 'Next')]",
	"//button[contains(@class, 'auth-button') and contains(@class, 'primary')]",
	"//button[@type='submit']",
	"button.Button.auth-button.default.primary",
}

const (
	countryDropdownSelector = "div.CountryCodeInput"
	countrySearchSelector   = "input#sign-in-phone-code"
	phoneInputSelector      = "input#sign-in-phone-number"
	codeInputSelector       = "#sign-in-code"
	chatListSelector        = ".chat-list, .dialogs, .conversation-list"
)

// scriptClickNext clicks the first visible primary button. Fallback for
// client builds where none of the next-button selectors match an
// enabled element.
const scriptClickNext = `(() => {
	const buttons = document.querySelectorAll("button.primary");
	for (const b of buttons) {
		if (b.offsetParent !== null) { b.click(); return true; }
	}
	return false;
})()`

// exportLocalStorage snapshots the client's session-local key-value data.
const exportLocalStorage = `Object.assign({}, localStorage)`

// Bounds on individual form interactions; the entry-page button search
// uses the manager's step timeout instead since the page can be slow to
// render on first load.
const (
	formWait       = 10 * time.Second
	nextButtonWait = 5 * time.Second
)

// phoneSteps drives the browser through phone entry. Pure driver
// choreography: no session state is touched here.
func (m *Manager) phoneSteps(countryCode, phoneNumber string) error {
	ui := m.driver

	if err := ui.Start(); err != nil {
		return fmt.Errorf("driver start: %w", err)
	}

	if err := ui.Navigate(m.entryURL); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	loginButton, err := ui.WaitForClickable(loginButtonSelectors, m.stepTimeout)
	if err != nil {
		return fmt.Errorf("login button: %w", err)
	}
	if err := loginButton.Click(); err != nil {
		return fmt.Errorf("login button: %w", err)
	}

	dropdown, err := ui.WaitForClickable([]string{countryDropdownSelector}, formWait)
	if err != nil {
		return fmt.Errorf("country dropdown: %w", err)
	}
	if err := dropdown.Click(); err != nil {
		return fmt.Errorf("country dropdown: %w", err)
	}

	countryName := CountryName(countryCode)
	search, err := ui.WaitForPresence(countrySearchSelector, formWait)
	if err != nil {
		return fmt.Errorf("country search input: %w", err)
	}
	if err := search.Type(countryName); err != nil {
		return fmt.Errorf("country search input: %w", err)
	}

	optionSelector := fmt.Sprintf(
		"//div[contains(@class, 'MenuItem')]//span[contains(text(), '%s')]", countryName,
	)
	option, err := ui.WaitForClickable([]string{optionSelector}, formWait)
	if err != nil {
		return fmt.Errorf("country option %q: %w", countryName, err)
	}
	if err := option.Click(); err != nil {
		return fmt.Errorf("country option %q: %w", countryName, err)
	}

	phoneInput, err := ui.WaitForPresence(phoneInputSelector, formWait)
	if err != nil {
		return fmt.Errorf("phone input: %w", err)
	}
	if err := phoneInput.Type(phoneNumber); err != nil {
		return fmt.Errorf("phone input: %w", err)
	}

	return m.clickNext()
}

// clickNext submits the phone form, falling back to an in-page script
// click when no selector candidate matches an enabled button.
func (m *Manager) clickNext() error {
	next, err := m.driver.WaitForClickable(nextButtonSelectors, nextButtonWait)
	if err == nil {
		if err := next.Click(); err != nil {
			return fmt.Errorf("next button: %w", err)
		}
		return nil
	}
	if !errors.Is(err, browser.ErrElementNotFound) {
		return fmt.Errorf("next button: %w", err)
	}

	clicked, scriptErr := m.driver.ExecuteScript(scriptClickNext)
	if scriptErr != nil {
		return fmt.Errorf("next button fallback: %w", scriptErr)
	}
	if ok, _ := clicked.(bool); !ok {
		return fmt.Errorf("next button: %w", browser.ErrElementNotFound)
	}
	return nil
}

// codeSteps drives the browser through code verification and returns
// the exported localStorage snapshot on success.
func (m *Manager) codeSteps(code string) (map[string]string, error) {
	ui := m.driver

	codeInput, err := ui.WaitForPresence(codeInputSelector, m.stepTimeout)
	if err != nil {
		return nil, fmt.Errorf("code input: %w", err)
	}
	if err := codeInput.Type(code); err != nil {
		return nil, fmt.Errorf("code input: %w", err)
	}

	// Any chat-list marker appearing means the code was accepted
	if _, err := ui.WaitForPresence(chatListSelector, m.stepTimeout); err != nil {
		return nil, fmt.Errorf("chat list: %w", err)
	}

	raw, err := ui.ExecuteScript(exportLocalStorage)
	if err != nil {
		return nil, fmt.Errorf("local storage export: %w", err)
	}
	return coerceStorage(raw), nil
}

// coerceStorage normalizes the script result into string pairs.
// localStorage values are always strings, but the evaluation bridge
// returns loosely typed data.
func coerceStorage(raw any) map[string]string {
	exported := make(map[string]string)
	entries, ok := raw.(map[string]any)
	if !ok {
		return exported
	}
	for key, value := range entries {
		if s, ok := value.(string); ok {
			exported[key] = s
		} else {
			exported[key] = fmt.Sprintf("%v", value)
		}
	}
	return exported
}
