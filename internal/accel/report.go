package accel

import (
	"fmt"
	"io"
	"strconv"
)

// ReportAccelerator writes one descriptor block.
func ReportAccelerator(w io.Writer, d Descriptor) {
	fmt.Fprintf(w, ": %s \n", d.Description)
	fmt.Fprintf(w, "       device_path                       = %s\n", d.Path)
	fmt.Fprintf(w, "       dedicated_memory                  = %s Mb\n", strconv.FormatFloat(d.DedicatedMemoryMB(), 'g', 4, 64))
	fmt.Fprintf(w, "       has_display                       = %t\n", d.HasDisplay)
	fmt.Fprintf(w, "       is_debug                          = %t\n", d.IsDebug)
	fmt.Fprintf(w, "       is_emulated                       = %t\n", d.IsEmulated)
	fmt.Fprintf(w, "       supports_double_precision         = %t\n", d.SupportsDoublePrecision)
	fmt.Fprintf(w, "       supports_limited_double_precision = %t\n", d.SupportsLimitedDoublePrecision)
}

// ListAccelerators reports every accelerator followed by the default one.
func ListAccelerators(w io.Writer, list []Accelerator) {
	for _, a := range list {
		ReportAccelerator(w, a.Describe())
	}

	def, err := SelectDefault(list)
	if err != nil {
		return
	}
	fmt.Fprintf(w, " default acc = %s\n", def.Describe().Description)
}

// QuerySupport enumerates accelerators and reports them. Finding none is
// advisory, not an error. Enumeration failures are returned together with
// the accelerators that were found so the caller can still use them.
func QuerySupport(w io.Writer, e Enumerator) ([]Accelerator, error) {
	list, err := e.Accelerators()
	if len(list) == 0 {
		fmt.Fprintln(w, "No accelerators found that are compatible with ampbench")
		return nil, err
	}

	fmt.Fprintln(w, "Accelerators found that are compatible with ampbench")
	ListAccelerators(w, list)
	return list, err
}
