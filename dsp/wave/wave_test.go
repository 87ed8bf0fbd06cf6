package wave

import (
	"math"
	"testing"

	"audiograph/dsp/complexnum"
	"audiograph/dsp/fft"
)

func TestWaveMatchesDFTPeakBin(t *testing.T) {
	const (
		n          = 128
		freq       = 400.0
		sampleRate = 44100.0
	)
	w := NewWave[float64](freq, 1.0, sampleRate)
	samples := make([]float64, n)
	w.Fill(samples)

	x := complexnum.NewListFromReal[float64](samples)
	spectrum := fft.DFT(x)
	mags := spectrum.MagnitudeAlloc(complexnum.Linear)

	peakBin, peakMag := 0, 0.0
	for i := 0; i < n/2; i++ {
		if mags[i] > peakMag {
			peakBin, peakMag = i, mags[i]
		}
	}

	wantBin := int(math.Round(freq * n / sampleRate))
	if peakBin != wantBin {
		t.Errorf("peak bin = %d, want %d", peakBin, wantBin)
	}
}

func TestWavePhaseContinuityAcrossFill(t *testing.T) {
	w := NewWave[float64](100, 1.0, 44100)
	first := make([]float64, 64)
	second := make([]float64, 64)
	w.Fill(first)
	w.Fill(second)

	continuous := NewWave[float64](100, 1.0, 44100)
	whole := make([]float64, 128)
	continuous.Fill(whole)

	for i, v := range first {
		if math.Abs(v-whole[i]) > 1e-9 {
			t.Errorf("first[%d] = %v, want %v", i, v, whole[i])
		}
	}
	for i, v := range second {
		if math.Abs(v-whole[64+i]) > 1e-9 {
			t.Errorf("second[%d] = %v, want %v", i, v, whole[64+i])
		}
	}
}

func TestWaveSetSampleRateRecomputesIncrement(t *testing.T) {
	w := NewWave[float64](1000, 1.0, 44100)
	w.SetSampleRate(22050)
	if math.Abs(w.increment-2*math.Pi*1000/22050) > 1e-12 {
		t.Errorf("increment = %v, want %v", w.increment, 2*math.Pi*1000/22050)
	}
}
