//go:build windows

package selection

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
)

var (
	clsidCUIAutomation       = ole.NewGUID("{FF48DBA4-60EF-4201-AA87-54103EEF594E}")
	iidIUIAutomation         = ole.NewGUID("{30CBE57D-D9D0-452A-AB13-7AC5AC4825EE}")
	iidIUIAutomationTextPatt = ole.NewGUID("{32EBA289-3583-42C9-9C59-3B6D9A1E9B6A}")
)

// vtable slots, counted from IUnknown::QueryInterface = 0.
const (
	slotRelease = 2

	slotAutomationElementFromHandle   = 6
	slotAutomationGetFocusedElement   = 8
	slotAutomationCreateTrueCondition = 21

	slotElementFindAll             = 6
	slotElementGetCurrentPatternAs = 14

	slotTextPatternGetSelection = 5

	slotArrayLength     = 3
	slotArrayGetElement = 4

	slotTextRangeGetText = 12
)

const (
	uiaTextPatternID      = 10014
	treeScopeDescendants  = 4
	maxDescendantsVisited = 2000
)

var errNullObject = errors.New("uia: null object")

// comObject is a raw COM interface pointer.
type comObject uintptr

func (o comObject) call(slot int, args ...uintptr) error {
	if o == 0 {
		return errNullObject
	}
	vtbl := *(*uintptr)(unsafe.Pointer(o))
	fn := *(*uintptr)(unsafe.Pointer(vtbl + uintptr(slot)*unsafe.Sizeof(uintptr(0))))
	hr, _, _ := syscall.SyscallN(fn, append([]uintptr{uintptr(o)}, args...)...)
	if int32(hr) < 0 {
		return ole.NewError(hr)
	}
	return nil
}

func (o comObject) release() {
	if o != 0 {
		_ = o.call(slotRelease)
	}
}

// out calls a method whose last parameter receives an interface pointer.
func (o comObject) out(slot int, args ...uintptr) (comObject, error) {
	var res comObject
	err := o.call(slot, append(args, uintptr(unsafe.Pointer(&res)))...)
	if err != nil {
		return 0, err
	}
	if res == 0 {
		return 0, errNullObject
	}
	return res, nil
}

func (o comObject) arrayLength() int {
	var n int32
	if err := o.call(slotArrayLength, uintptr(unsafe.Pointer(&n))); err != nil {
		return 0
	}
	return int(n)
}

func (o comObject) arrayElement(i int) (comObject, error) {
	return o.out(slotArrayGetElement, uintptr(i))
}

// selectionText returns the selected text of element, or "" when it has no
// text pattern or nothing is selected.
func selectionText(element comObject) string {
	pattern, err := element.out(slotElementGetCurrentPatternAs,
		uintptr(uiaTextPatternID), uintptr(unsafe.Pointer(iidIUIAutomationTextPatt)))
	if err != nil {
		return ""
	}
	defer pattern.release()

	ranges, err := pattern.out(slotTextPatternGetSelection)
	if err != nil {
		return ""
	}
	defer ranges.release()

	for i := 0; i < ranges.arrayLength(); i++ {
		r, err := ranges.arrayElement(i)
		if err != nil {
			continue
		}
		text := rangeText(r)
		r.release()
		if text != "" {
			return text
		}
	}
	return ""
}

func rangeText(r comObject) string {
	var bstr *uint16
	maxLength := int32(-1)
	if err := r.call(slotTextRangeGetText, uintptr(maxLength), uintptr(unsafe.Pointer(&bstr))); err != nil || bstr == nil {
		return ""
	}
	defer ole.SysFreeString((*int16)(unsafe.Pointer(bstr)))
	return ole.BstrToString(bstr)
}

func newAutomation() (comObject, error) {
	unk, err := ole.CreateInstance(clsidCUIAutomation, iidIUIAutomation)
	if err != nil {
		return 0, fmt.Errorf("uia: create CUIAutomation: %w", err)
	}
	return comObject(unsafe.Pointer(unk)), nil
}
