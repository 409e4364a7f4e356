package crawler

import (
	"context"
	"fmt"

	"github.com/eslam-allam/cult-beauty/internal/extract"
)

// Session-setup selectors: cookie consent, the e-mail re-engagement overlay
// and the session-settings menu used to switch the display currency.
const (
	selCookieAccept      = "#onetrust-accept-btn-handler"
	selEmailOverlayClose = "body > div.emailReengagement > div > div.emailReengagement_form_container > button > svg > path"
	selSessionSettings   = ".responsiveSubMenu_sessionSettings"
	selCurrencySelect    = ".sessionSettings_currencySelect"
	selSettingsSave      = ".sessionSettings_saveButton"
)

// prepareSession opens the category entry page and puts the session into a
// scrapable state. Overlay dismissal is best-effort; a failed currency
// switch abandons the category, since its prices would not be comparable to
// the rest of the run.
func (w *Walker) prepareSession(ctx context.Context, categoryURL string) error {
	if err := w.sess.Navigate(categoryURL); err != nil {
		return fmt.Errorf("open category page: %w", err)
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	w.dismissOverlay(selCookieAccept)
	w.dismissOverlay(selEmailOverlayClose)

	if w.currency != "" {
		if err := w.changeCurrency(ctx); err != nil {
			return fmt.Errorf("change currency to %q: %w", w.currency, err)
		}
		w.logger.Info("currency changed", "currency", w.currency)
	}
	return nil
}

func (w *Walker) dismissOverlay(selector string) {
	h, err := w.sess.WaitUntilVisible(selector, w.setupTimeout)
	if err != nil {
		w.logger.Debug("overlay not shown", "selector", selector, "error", err)
		return
	}
	if err := h.Click(); err != nil {
		w.logger.Debug("cannot dismiss overlay", "selector", selector, "error", err)
	}
}

func (w *Walker) changeCurrency(ctx context.Context) error {
	settings, err := w.sess.WaitUntilPresent(selSessionSettings, w.setupTimeout)
	if err != nil {
		return fmt.Errorf("locate settings menu: %w", err)
	}
	if err := extract.Click(settings, extract.BySelector(w.sess, selSessionSettings), w.retry, w.logger); err != nil {
		return fmt.Errorf("open settings menu: %w", err)
	}

	currency, err := w.sess.WaitUntilPresent(selCurrencySelect, w.presenceTimeout)
	if err != nil {
		return fmt.Errorf("locate currency select: %w", err)
	}
	if err := currency.SelectByVisibleText(w.currency); err != nil {
		return fmt.Errorf("select currency: %w", err)
	}

	save, err := w.sess.WaitUntilPresent(selSettingsSave, w.presenceTimeout)
	if err != nil {
		return fmt.Errorf("locate save button: %w", err)
	}
	if err := extract.Click(save, extract.BySelector(w.sess, selSettingsSave), w.retry, w.logger); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return w.limiter.Wait(ctx)
}
