package sampling

import (
	"math"
	"testing"
)

func TestUnitDisk(t *testing.T) {
	gen := NewUnitDisk(42)

	var inner int
	const count = 20000
	for i := 0; i < count; i++ {
		p := gen.Sample()
		r2 := p[0]*p[0] + p[1]*p[1]
		if r2 > 1+1e-12 || p[2] != 0 {
			t.Fatalf("expected sample inside the unit disk; got %v", p)
		}
		if r2 < 0.25 {
			inner++
		}
	}

	// The inner disk of radius 0.5 covers a quarter of the area
	if frac := float64(inner) / count; math.Abs(frac-0.25) > 0.02 {
		t.Fatalf("expected about 25%% of the samples within radius 0.5; got %.3f", frac)
	}
}

func TestHemisphere(t *testing.T) {
	for _, dist := range []HemisphereDistribution{Cosine, Uniform} {
		gen := NewHemisphere(7, dist)

		var sumZ float64
		const count = 20000
		for i := 0; i < count; i++ {
			d := gen.Sample()
			if d[2] < 0 {
				t.Fatalf("[dist %d] expected z >= 0; got %v", dist, d)
			}
			if n := d.Norm(); math.Abs(n-1) > 1e-9 {
				t.Fatalf("[dist %d] expected unit direction; got norm %f", dist, n)
			}
			sumZ += d[2]
		}

		// E[cos] is 2/3 for cosine weighting and 1/2 for uniform sampling
		exp := 2.0 / 3.0
		if dist == Uniform {
			exp = 0.5
		}
		if mean := sumZ / count; math.Abs(mean-exp) > 0.02 {
			t.Fatalf("[dist %d] expected mean z %.3f; got %.3f", dist, exp, mean)
		}
	}
}

func TestGeneratorSeeding(t *testing.T) {
	gens := []func(seed uint64) Generator{
		func(seed uint64) Generator { return NewUnitDisk(seed) },
		func(seed uint64) Generator { return NewHemisphere(seed, Cosine) },
	}

	for genIndex, newGen := range gens {
		a, b := newGen(1), newGen(1)
		first := a.Sample()
		if first != b.Sample() {
			t.Fatalf("[gen %d] expected generators with equal seeds to match", genIndex)
		}

		a.SetState(99)
		b.SetState(99)
		for i := 0; i < 10; i++ {
			if a.Sample() != b.Sample() {
				t.Fatalf("[gen %d] expected reseeded generators to match", genIndex)
			}
		}

		a.SetState(1)
		if a.Sample() != first {
			t.Fatalf("[gen %d] expected SetState to restart the sequence", genIndex)
		}
	}
}

func TestConcentricDisk(t *testing.T) {
	specs := []struct {
		u1, u2 float64
		x, y   float64
	}{
		{0.5, 0.5, 0, 0},
		{1, 0.5, 1, 0},
		{0, 0.5, -1, 0},
		{0.5, 1, 0, 1},
		{0.5, 0, 0, -1},
	}

	for specIndex, spec := range specs {
		x, y := ConcentricDisk(spec.u1, spec.u2)
		if math.Abs(x-spec.x) > 1e-12 || math.Abs(y-spec.y) > 1e-12 {
			t.Errorf("[spec %d] expected (%f, %f); got (%f, %f)", specIndex, spec.x, spec.y, x, y)
		}
	}
}

func TestStratified2D(t *testing.T) {
	if offsets := Stratified2D(0, nil); offsets != nil {
		t.Fatalf("expected no offsets for n=0; got %v", offsets)
	}

	centers := Stratified2D(2, nil)
	exp := [][2]float64{{0.25, 0.25}, {0.75, 0.25}, {0.25, 0.75}, {0.75, 0.75}}
	for i, e := range exp {
		if centers[i][0] != e[0] || centers[i][1] != e[1] {
			t.Fatalf("expected cell centers %v; got %v", exp, centers)
		}
	}

	n := 4
	jittered := Stratified2D(n, NewRand(3))
	if len(jittered) != n*n {
		t.Fatalf("expected %d offsets; got %d", n*n, len(jittered))
	}
	for i, o := range jittered {
		cx, cy := i%n, i/n
		if int(o[0]*float64(n)) != cx || int(o[1]*float64(n)) != cy {
			t.Fatalf("expected offset %d to lie in cell (%d, %d); got %v", i, cx, cy, o)
		}
	}
}
