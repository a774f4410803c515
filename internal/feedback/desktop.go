package feedback

import (
	"sync"

	"github.com/ncruces/zenity"
	"go.uber.org/zap"
)

// DesktopNotifier raises native notifications through zenity. Each call
// runs on its own goroutine; Close waits for them.
type DesktopNotifier struct {
	notify func(text string, options ...zenity.Option) error
	log    *zap.Logger
	wg     sync.WaitGroup
}

func NewDesktopNotifier(logger *zap.Logger) *DesktopNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DesktopNotifier{notify: zenity.Notify, log: logger.Named("notify")}
}

func (d *DesktopNotifier) Notify(title, body string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.notify(body, zenity.Title(title), zenity.InfoIcon); err != nil {
			d.log.Debug("desktop notification failed", zap.String("title", title), zap.Error(err))
		}
	}()
}

func (d *DesktopNotifier) Close() {
	d.wg.Wait()
}
