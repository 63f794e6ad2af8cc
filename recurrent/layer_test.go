package recurrent

import "testing"

func TestLayer(t *testing.T) {
	t.Run("every cell is allocated with the layer sizes", func(t *testing.T) {
		layer, err := NewLayer(3, 2, 4, newTestRand(1))
		if err != nil {
			t.Fatal(err)
		}
		if len(layer.Cells) != 3 {
			t.Fatalf("got %d cells", len(layer.Cells))
		}
		for _, cell := range layer.Cells {
			if cell.InSize != 2 || cell.HidSize != 4 {
				t.Errorf("cell sized %dx%d", cell.InSize, cell.HidSize)
			}
		}
	})
	t.Run("zero cells is an error", func(t *testing.T) {
		if _, err := NewLayer(0, 1, 1, newTestRand(1)); err == nil {
			t.Fail()
		}
	})
	t.Run("single cell layer is the cell", func(t *testing.T) {
		layer, _ := NewLayer(1, 1, 3, newTestRand(2))
		ref := layer.Cells[0].Clone()
		input := []float32{0.6}
		layer.Forward(input)
		ref.Forward(input)
		out := layer.Output()
		for j := range out {
			if out[j] != ref.H[j] {
				t.Fatalf("output %v != %v", out, ref.H)
			}
		}
		dh := []float32{0.1, -0.2, 0.3}
		dc := make([]float32, 3)
		got, err := layer.Backward(dh, dc, 0.01)
		if err != nil {
			t.Fatal(err)
		}
		want, _ := ref.Backward(dh, dc, 0.01)
		for k := range want.DX {
			if got.DX[k] != want.DX[k] {
				t.Errorf("dx[%d] %v != %v", k, got.DX[k], want.DX[k])
			}
		}
	})
	t.Run("backward hands each cell only the next cell's gradients", func(t *testing.T) {
		layer, _ := NewLayer(2, 1, 3, newTestRand(3))
		ref0 := layer.Cells[0].Clone()
		ref1 := layer.Cells[1].Clone()

		input := []float32{0.4}
		layer.Forward(input)
		ref0.Forward(input)
		ref1.Forward(input)

		dh := []float32{0.5, -0.25, 1}
		dc := []float32{0.1, 0.2, -0.3}
		got, err := layer.Backward(dh, dc, 0.05)
		if err != nil {
			t.Fatal(err)
		}

		g1, _ := ref1.Backward(dh, dc, 0.05)
		g0, _ := ref0.Backward(g1.DH, g1.DC, 0.05)
		for j := range g0.DH {
			if got.DH[j] != g0.DH[j] || got.DC[j] != g0.DC[j] {
				t.Errorf("unit %d: got (%v, %v), want first cell's (%v, %v)",
					j, got.DH[j], got.DC[j], g0.DH[j], g0.DC[j])
			}
		}
		for k := range got.DX {
			if got.DX[k] != g1.DX[k]+g0.DX[k] {
				t.Errorf("dx[%d] = %v, want %v", k, got.DX[k], g1.DX[k]+g0.DX[k])
			}
		}
		for i, cell := range layer.Cells {
			for j := range cell.Input.W.W {
				ref := ref0
				if i == 1 {
					ref = ref1
				}
				if cell.Input.W.W[j] != ref.Input.W.W[j] {
					t.Errorf("cell %d updated differently", i)
				}
			}
		}
	})
	t.Run("backward without forward fails", func(t *testing.T) {
		layer, _ := NewLayer(1, 1, 2, newTestRand(4))
		if _, err := layer.Backward(make([]float32, 2), make([]float32, 2), 0.1); err == nil {
			t.Fail()
		}
	})
}
