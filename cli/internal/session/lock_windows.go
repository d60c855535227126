//go:build windows

package session

import (
	"errors"
	"os"
	"syscall"
	"unsafe"
)

const (
	_lockFileExclusive                     = 2
	_lockFileFailImmediately               = 1
	_lockViolation           syscall.Errno = 0x21
)

var (
	_modkernel32      = syscall.NewLazyDLL("kernel32.dll")
	_procLockFileEx   = _modkernel32.NewProc("LockFileEx")
	_procUnlockFileEx = _modkernel32.NewProc("UnlockFileEx")
)

// tryLock locks the byte range past the PID so other processes can still
// read who holds the lock.
func tryLock(f *os.File) error {
	var ol syscall.Overlapped
	ol.Offset = 1 << 20
	r1, _, err := _procLockFileEx.Call(
		uintptr(syscall.Handle(f.Fd())),
		uintptr(_lockFileExclusive|_lockFileFailImmediately),
		0,
		1,
		0,
		uintptr(unsafe.Pointer(&ol)),
	)
	if r1 != 0 {
		return nil
	}
	if errors.Is(err, _lockViolation) {
		return ErrLocked
	}
	if err == nil {
		err = errors.New("LockFileEx failed")
	}
	return err
}

func unlock(f *os.File) {
	var ol syscall.Overlapped
	ol.Offset = 1 << 20
	_, _, _ = _procUnlockFileEx.Call(uintptr(syscall.Handle(f.Fd())), 0, 1, 0, uintptr(unsafe.Pointer(&ol)))
}
