package numa

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// AllowedCPUs returns the CPU set the calling process is allowed to run
// on, via sched_getaffinity. Used to bound threads_nb the way the
// original module bounds it against num_online_cpus().
func AllowedCPUs() ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return nil, fmt.Errorf("numa: sched_getaffinity: %w", err)
	}
	want := set.Count()
	cpus := make([]int, 0, want)
	for i := 0; i < unix.CPU_SETSIZE && len(cpus) < want; i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}

// BindCurrentThread pins the calling goroutine's backing OS thread to a
// single CPU via sched_setaffinity. It locks the goroutine to its OS
// thread first (runtime.LockOSThread) so the pin is not lost the next
// time the goroutine is rescheduled onto a different thread; the caller
// is expected to keep running on this same goroutine for the remainder
// of its work, matching kthread_bind in the original benchmark driver.
func BindCurrentThread(cpu int) error {
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("numa: sched_setaffinity(cpu=%d): %w", cpu, err)
	}
	return nil
}
