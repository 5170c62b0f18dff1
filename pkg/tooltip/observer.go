package tooltip

import "time"

// HideReason says why a tooltip was hidden.
type HideReason string

const (
	HidePointerLeave HideReason = "pointerleave"
	HideOutsideClick HideReason = "outside_click"
	HideBlur         HideReason = "blur"
	HideClose        HideReason = "close"
	HideManual       HideReason = "manual"
)

// Observer receives lifecycle notifications. Implementations must be
// cheap; they run inside event handlers.
type Observer interface {
	// OnAttach is called once per Attach.
	OnAttach(trigger ShowOn)
	// OnClose is called once when a tooltip is torn down.
	OnClose(trigger ShowOn)
	// OnShow is called when a hidden tooltip is inserted into the document.
	OnShow(trigger ShowOn)
	// OnHide is called when a visible tooltip is removed.
	OnHide(reason HideReason)
	// OnRecalculate is called after styles from p were applied.
	OnRecalculate(p Placement, elapsed time.Duration)
	// OnSkip is called when a recalculation was skipped.
	OnSkip(err error)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) OnAttach(ShowOn)                        {}
func (NopObserver) OnClose(ShowOn)                         {}
func (NopObserver) OnShow(ShowOn)                          {}
func (NopObserver) OnHide(HideReason)                      {}
func (NopObserver) OnRecalculate(Placement, time.Duration) {}
func (NopObserver) OnSkip(error)                           {}

var _ Observer = NopObserver{}
