//go:build gpu

package opencl

/*
#cgo LDFLAGS: -lOpenCL
#define CL_TARGET_OPENCL_VERSION 120
#define CL_USE_DEPRECATED_OPENCL_1_2_APIS
#include <CL/cl.h>
#include <stdlib.h>

static const char* ampbench_cl_error_string(cl_int status) {
	switch (status) {
	case CL_SUCCESS: return "CL_SUCCESS";
	case CL_DEVICE_NOT_FOUND: return "CL_DEVICE_NOT_FOUND";
	case CL_DEVICE_NOT_AVAILABLE: return "CL_DEVICE_NOT_AVAILABLE";
	case CL_COMPILER_NOT_AVAILABLE: return "CL_COMPILER_NOT_AVAILABLE";
	case CL_MEM_OBJECT_ALLOCATION_FAILURE: return "CL_MEM_OBJECT_ALLOCATION_FAILURE";
	case CL_OUT_OF_RESOURCES: return "CL_OUT_OF_RESOURCES";
	case CL_OUT_OF_HOST_MEMORY: return "CL_OUT_OF_HOST_MEMORY";
	case CL_BUILD_PROGRAM_FAILURE: return "CL_BUILD_PROGRAM_FAILURE";
	case CL_INVALID_VALUE: return "CL_INVALID_VALUE";
	case CL_INVALID_DEVICE: return "CL_INVALID_DEVICE";
	case CL_INVALID_CONTEXT: return "CL_INVALID_CONTEXT";
	case CL_INVALID_COMMAND_QUEUE: return "CL_INVALID_COMMAND_QUEUE";
	case CL_INVALID_HOST_PTR: return "CL_INVALID_HOST_PTR";
	case CL_INVALID_MEM_OBJECT: return "CL_INVALID_MEM_OBJECT";
	case CL_INVALID_PROGRAM: return "CL_INVALID_PROGRAM";
	case CL_INVALID_PROGRAM_EXECUTABLE: return "CL_INVALID_PROGRAM_EXECUTABLE";
	case CL_INVALID_KERNEL_NAME: return "CL_INVALID_KERNEL_NAME";
	case CL_INVALID_KERNEL: return "CL_INVALID_KERNEL";
	case CL_INVALID_ARG_INDEX: return "CL_INVALID_ARG_INDEX";
	case CL_INVALID_ARG_VALUE: return "CL_INVALID_ARG_VALUE";
	case CL_INVALID_ARG_SIZE: return "CL_INVALID_ARG_SIZE";
	case CL_INVALID_KERNEL_ARGS: return "CL_INVALID_KERNEL_ARGS";
	case CL_INVALID_WORK_DIMENSION: return "CL_INVALID_WORK_DIMENSION";
	case CL_INVALID_WORK_GROUP_SIZE: return "CL_INVALID_WORK_GROUP_SIZE";
	case CL_INVALID_WORK_ITEM_SIZE: return "CL_INVALID_WORK_ITEM_SIZE";
	case CL_INVALID_BUFFER_SIZE: return "CL_INVALID_BUFFER_SIZE";
	case CL_INVALID_OPERATION: return "CL_INVALID_OPERATION";
	default: return "CL_UNKNOWN_ERROR";
	}
}
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unsafe"

	"github.com/cwbudde/ampbench/internal/accel"
)

// clPlatformNotFoundKHR is returned by the ICD loader when no platform is installed.
const clPlatformNotFoundKHR = -1001

// Accelerator is one OpenCL device. The context and command queue are
// created on first use and released by Close.
type Accelerator struct {
	desc     accel.Descriptor
	device   C.cl_device_id
	maxGroup int
	logger   *slog.Logger

	mu       sync.Mutex
	opened   bool
	context  C.cl_context
	queue    C.cl_command_queue
	programs []C.cl_program
	kernels  map[string]C.cl_kernel
}

type view struct {
	owner  *Accelerator
	host   []float64
	mem    C.cl_mem
	access accel.Access
	closed bool
}

func (v *view) Len() int             { return len(v.host) }
func (v *view) Access() accel.Access { return v.access }

// Data returns nil: device memory is not host addressable.
func (v *view) Data() []float64 { return nil }

func (v *view) Close() error {
	if v.closed {
		return errors.New("view already closed")
	}
	v.closed = true
	if v.mem != nil {
		C.clReleaseMemObject(v.mem)
		v.mem = nil
	}
	return nil
}

func enumerate(logger *slog.Logger) ([]accel.Accelerator, error) {
	var count C.cl_uint
	status := C.clGetPlatformIDs(0, nil, &count)
	if status == clPlatformNotFoundKHR {
		return nil, nil
	}
	if status != C.CL_SUCCESS {
		return nil, statusError("clGetPlatformIDs(count)", status)
	}
	if count == 0 {
		return nil, nil
	}

	platforms := make([]C.cl_platform_id, int(count))
	status = C.clGetPlatformIDs(count, &platforms[0], nil)
	if status != C.CL_SUCCESS {
		return nil, statusError("clGetPlatformIDs(list)", status)
	}

	var out []accel.Accelerator
	for p, pid := range platforms {
		platformName, err := getPlatformString(pid, C.CL_PLATFORM_NAME)
		if err != nil {
			return out, err
		}

		devices, err := deviceIDs(pid)
		if err != nil {
			return out, err
		}
		for d, id := range devices {
			desc, maxGroup, err := describeDevice(id, platformName)
			if err != nil {
				return out, err
			}
			desc.Path = devicePath(p, d)
			logger.Debug("Found OpenCL device",
				"path", desc.Path,
				"device", desc.Description,
				"max_work_group", maxGroup)
			out = append(out, &Accelerator{desc: desc, device: id, maxGroup: maxGroup, logger: logger})
		}
	}
	return out, nil
}

func deviceIDs(platform C.cl_platform_id) ([]C.cl_device_id, error) {
	var count C.cl_uint
	status := C.clGetDeviceIDs(platform, C.CL_DEVICE_TYPE_ALL, 0, nil, &count)
	if status == C.CL_DEVICE_NOT_FOUND || (status == C.CL_SUCCESS && count == 0) {
		return nil, nil
	}
	if status != C.CL_SUCCESS {
		return nil, statusError("clGetDeviceIDs(count)", status)
	}

	ids := make([]C.cl_device_id, int(count))
	status = C.clGetDeviceIDs(platform, C.CL_DEVICE_TYPE_ALL, count, &ids[0], nil)
	if status != C.CL_SUCCESS {
		return nil, statusError("clGetDeviceIDs(list)", status)
	}
	return ids, nil
}

func describeDevice(id C.cl_device_id, platform string) (accel.Descriptor, int, error) {
	name, err := getDeviceString(id, C.CL_DEVICE_NAME)
	if err != nil {
		return accel.Descriptor{}, 0, err
	}
	extensions, err := getDeviceString(id, C.CL_DEVICE_EXTENSIONS)
	if err != nil {
		return accel.Descriptor{}, 0, err
	}

	var rawType C.cl_device_type
	status := C.clGetDeviceInfo(id, C.CL_DEVICE_TYPE, C.size_t(unsafe.Sizeof(rawType)), unsafe.Pointer(&rawType), nil)
	if status != C.CL_SUCCESS {
		return accel.Descriptor{}, 0, statusError("clGetDeviceInfo(type)", status)
	}

	var globalMem C.cl_ulong
	status = C.clGetDeviceInfo(id, C.CL_DEVICE_GLOBAL_MEM_SIZE, C.size_t(unsafe.Sizeof(globalMem)), unsafe.Pointer(&globalMem), nil)
	if status != C.CL_SUCCESS {
		return accel.Descriptor{}, 0, statusError("clGetDeviceInfo(globalMem)", status)
	}

	// Devices without fp64 report an empty config; older drivers reject the query.
	var fpConfig C.cl_device_fp_config
	status = C.clGetDeviceInfo(id, C.CL_DEVICE_DOUBLE_FP_CONFIG, C.size_t(unsafe.Sizeof(fpConfig)), unsafe.Pointer(&fpConfig), nil)
	if status != C.CL_SUCCESS {
		fpConfig = 0
	}

	var maxGroup C.size_t
	status = C.clGetDeviceInfo(id, C.CL_DEVICE_MAX_WORK_GROUP_SIZE, C.size_t(unsafe.Sizeof(maxGroup)), unsafe.Pointer(&maxGroup), nil)
	if status != C.CL_SUCCESS {
		return accel.Descriptor{}, 0, statusError("clGetDeviceInfo(maxWorkGroup)", status)
	}

	kind := mapDeviceType(rawType)
	full := fpConfig != 0 || hasExtension(extensions, "cl_khr_fp64")
	return accel.Descriptor{
		Description:                    fmt.Sprintf("%s (%s)", name, platform),
		Kind:                           kind,
		DedicatedMemory:                uint64(globalMem),
		IsEmulated:                     kind == accel.DeviceTypeCPU,
		SupportsDoublePrecision:        full,
		SupportsLimitedDoublePrecision: full || hasExtension(extensions, "cl_amd_fp64"),
	}, int(maxGroup), nil
}

func hasExtension(list, ext string) bool {
	for _, e := range strings.Fields(list) {
		if e == ext {
			return true
		}
	}
	return false
}

// Describe implements accel.Accelerator.
func (a *Accelerator) Describe() accel.Descriptor {
	return a.desc
}

func (a *Accelerator) open() error {
	if a.opened {
		return nil
	}

	var status C.cl_int
	a.context = C.clCreateContext(nil, 1, &a.device, nil, nil, &status)
	if status != C.CL_SUCCESS {
		return statusError("clCreateContext", status)
	}

	a.queue = C.clCreateCommandQueue(a.context, a.device, 0, &status)
	if status != C.CL_SUCCESS {
		C.clReleaseContext(a.context)
		a.context = nil
		return statusError("clCreateCommandQueue", status)
	}

	a.kernels = make(map[string]C.cl_kernel)
	a.opened = true
	return nil
}

// Stage implements accel.Accelerator.
func (a *Accelerator) Stage(host []float64, access accel.Access) (accel.View, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.open(); err != nil {
		return nil, err
	}

	v := &view{owner: a, host: host, access: access}
	if len(host) == 0 {
		return v, nil
	}

	size := C.size_t(len(host)) * C.size_t(unsafe.Sizeof(host[0]))
	var (
		flags C.cl_mem_flags
		ptr   unsafe.Pointer
	)
	switch access {
	case accel.ReadOnly:
		flags = C.CL_MEM_READ_ONLY | C.CL_MEM_COPY_HOST_PTR
		ptr = unsafe.Pointer(&host[0])
	case accel.ReadWrite:
		flags = C.CL_MEM_READ_WRITE | C.CL_MEM_COPY_HOST_PTR
		ptr = unsafe.Pointer(&host[0])
	default:
		flags = C.CL_MEM_WRITE_ONLY
	}

	var status C.cl_int
	v.mem = C.clCreateBuffer(a.context, flags, size, ptr, &status)
	if status != C.CL_SUCCESS {
		return nil, statusError("clCreateBuffer("+access.String()+")", status)
	}
	return v, nil
}

// Dispatch implements accel.Accelerator. Only kernels carrying OpenCL C
// source can run on this device.
func (a *Accelerator) Dispatch(ctx context.Context, space accel.IndexSpace, k accel.Kernel) error {
	if err := checkSpace(space, a.maxGroup); err != nil {
		return err
	}
	sk, ok := k.(accel.SourceKernel)
	if !ok {
		return fmt.Errorf("%w: %s has no OpenCL source", accel.ErrUnsupportedKernel, k.Name())
	}
	if !a.desc.Float64() {
		return accel.ErrDoublePrecision
	}
	if space.Extent == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.open(); err != nil {
		return err
	}
	kernel, err := a.kernel(sk)
	if err != nil {
		return err
	}

	args := sk.Args()
	for i, arg := range args {
		v, ok := arg.(*view)
		if !ok || v.owner != a {
			return fmt.Errorf("argument %d of %s was not staged on %s", i, k.Name(), a.desc.Path)
		}
		if v.closed {
			return fmt.Errorf("argument %d of %s is closed", i, k.Name())
		}
		status := C.clSetKernelArg(kernel, C.cl_uint(i), C.size_t(unsafe.Sizeof(v.mem)), unsafe.Pointer(&v.mem))
		if status != C.CL_SUCCESS {
			return statusError(fmt.Sprintf("clSetKernelArg(%d)", i), status)
		}
	}

	n := C.cl_int(space.Extent)
	status := C.clSetKernelArg(kernel, C.cl_uint(len(args)), C.size_t(unsafe.Sizeof(n)), unsafe.Pointer(&n))
	if status != C.CL_SUCCESS {
		return statusError("clSetKernelArg(n)", status)
	}

	global := C.size_t(space.Padded())
	var local *C.size_t
	if space.IsTiled() {
		ts := C.size_t(space.TileSize)
		local = &ts
	}

	status = C.clEnqueueNDRangeKernel(a.queue, kernel, 1, nil, &global, local, 0, nil, nil)
	if status != C.CL_SUCCESS {
		return statusError("clEnqueueNDRangeKernel", status)
	}
	if status = C.clFlush(a.queue); status != C.CL_SUCCESS {
		return statusError("clFlush", status)
	}
	return nil
}

// kernel returns the compiled kernel for sk, building its program on first use.
func (a *Accelerator) kernel(sk accel.SourceKernel) (C.cl_kernel, error) {
	if kern, ok := a.kernels[sk.Name()]; ok {
		return kern, nil
	}

	source := C.CString(fp64Pragma(a.desc) + sk.Source())
	defer C.free(unsafe.Pointer(source))

	var status C.cl_int
	program := C.clCreateProgramWithSource(a.context, 1, &source, nil, &status)
	if status != C.CL_SUCCESS {
		return nil, statusError("clCreateProgramWithSource", status)
	}

	status = C.clBuildProgram(program, 1, &a.device, nil, nil, nil)
	if status != C.CL_SUCCESS {
		buildLog := a.buildLog(program)
		C.clReleaseProgram(program)
		return nil, fmt.Errorf("%w\n%s", statusError("clBuildProgram", status), buildLog)
	}

	name := C.CString(sk.Name())
	defer C.free(unsafe.Pointer(name))

	kern := C.clCreateKernel(program, name, &status)
	if status != C.CL_SUCCESS {
		C.clReleaseProgram(program)
		return nil, statusError("clCreateKernel", status)
	}

	a.programs = append(a.programs, program)
	a.kernels[sk.Name()] = kern
	a.logger.Debug("Built OpenCL kernel", "kernel", sk.Name(), "device", a.desc.Path)
	return kern, nil
}

func (a *Accelerator) buildLog(program C.cl_program) string {
	var size C.size_t
	status := C.clGetProgramBuildInfo(program, a.device, C.CL_PROGRAM_BUILD_LOG, 0, nil, &size)
	if status != C.CL_SUCCESS || size == 0 {
		return ""
	}
	buf := make([]byte, int(size))
	status = C.clGetProgramBuildInfo(program, a.device, C.CL_PROGRAM_BUILD_LOG, size, unsafe.Pointer(&buf[0]), nil)
	if status != C.CL_SUCCESS {
		return ""
	}
	return trimNull(buf)
}

// Synchronize implements accel.Accelerator.
func (a *Accelerator) Synchronize(ctx context.Context, v accel.View) error {
	cv, ok := v.(*view)
	if !ok || cv.owner != a {
		return fmt.Errorf("view of type %T was not staged by %s", v, a.desc.Path)
	}
	if cv.closed {
		return errors.New("view already closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if status := C.clFinish(a.queue); status != C.CL_SUCCESS {
		return statusError("clFinish", status)
	}
	if !cv.access.Writable() || cv.mem == nil {
		return nil
	}

	size := C.size_t(len(cv.host)) * C.size_t(unsafe.Sizeof(cv.host[0]))
	status := C.clEnqueueReadBuffer(a.queue, cv.mem, C.CL_TRUE, 0, size, unsafe.Pointer(&cv.host[0]), 0, nil, nil)
	if status != C.CL_SUCCESS {
		return statusError("clEnqueueReadBuffer", status)
	}
	return nil
}

// Close releases compiled kernels, the command queue and the context.
func (a *Accelerator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.opened {
		return nil
	}
	for _, kern := range a.kernels {
		C.clReleaseKernel(kern)
	}
	for _, program := range a.programs {
		C.clReleaseProgram(program)
	}
	if a.queue != nil {
		C.clReleaseCommandQueue(a.queue)
		a.queue = nil
	}
	if a.context != nil {
		C.clReleaseContext(a.context)
		a.context = nil
	}
	a.kernels = nil
	a.programs = nil
	a.opened = false
	return nil
}

func getPlatformString(id C.cl_platform_id, param C.cl_platform_info) (string, error) {
	var size C.size_t
	status := C.clGetPlatformInfo(id, param, 0, nil, &size)
	if status != C.CL_SUCCESS {
		return "", statusError("clGetPlatformInfo(size)", status)
	}
	if size == 0 {
		return "", nil
	}

	buf := make([]byte, int(size))
	status = C.clGetPlatformInfo(id, param, size, unsafe.Pointer(&buf[0]), nil)
	if status != C.CL_SUCCESS {
		return "", statusError("clGetPlatformInfo(value)", status)
	}
	return trimNull(buf), nil
}

func getDeviceString(id C.cl_device_id, param C.cl_device_info) (string, error) {
	var size C.size_t
	status := C.clGetDeviceInfo(id, param, 0, nil, &size)
	if status != C.CL_SUCCESS {
		return "", statusError("clGetDeviceInfo(size)", status)
	}
	if size == 0 {
		return "", nil
	}

	buf := make([]byte, int(size))
	status = C.clGetDeviceInfo(id, param, size, unsafe.Pointer(&buf[0]), nil)
	if status != C.CL_SUCCESS {
		return "", statusError("clGetDeviceInfo(value)", status)
	}
	return trimNull(buf), nil
}

func trimNull(buf []byte) string {
	if n := len(buf); n > 0 && buf[n-1] == 0 {
		buf = buf[:n-1]
	}
	return string(buf)
}

func mapDeviceType(dt C.cl_device_type) accel.DeviceType {
	switch {
	case dt&C.CL_DEVICE_TYPE_GPU != 0:
		return accel.DeviceTypeGPU
	case dt&C.CL_DEVICE_TYPE_CPU != 0:
		return accel.DeviceTypeCPU
	case dt&C.CL_DEVICE_TYPE_ACCELERATOR != 0:
		return accel.DeviceTypeAccelerator
	default:
		return accel.DeviceTypeUnknown
	}
}

func statusError(prefix string, status C.cl_int) error {
	return fmt.Errorf("%s: %s (%d)", prefix, C.GoString(C.ampbench_cl_error_string(status)), int(status))
}
