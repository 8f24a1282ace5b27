package vecadd

import "github.com/cwbudde/ampbench/internal/accel"

const addKernelName = "vector_add"

const addKernelSource = `
__kernel void vector_add(
    __global const double *v1,
    __global const double *v2,
    __global double *v3,
    const int n) {

    const int i = get_global_id(0);
    if (i >= n) {
        return;
    }
    v3[i] = v1[i] + v2[i];
}
`

// addKernel is the element-wise add shared by the flat and tiled adders.
// Host-executed devices call Run through the views' device storage; native
// devices compile Source and bind Args.
type addKernel struct {
	in1, in2, out accel.View
	x, y, z       []float64
}

func newAddKernel(in1, in2, out accel.View) *addKernel {
	return &addKernel{
		in1: in1, in2: in2, out: out,
		x: in1.Data(), y: in2.Data(), z: out.Data(),
	}
}

func (k *addKernel) Name() string { return addKernelName }

func (k *addKernel) Run(i int) {
	k.z[i] = k.x[i] + k.y[i]
}

func (k *addKernel) Source() string { return addKernelSource }

func (k *addKernel) Args() []accel.View {
	return []accel.View{k.in1, k.in2, k.out}
}
