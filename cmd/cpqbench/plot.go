package main

import (
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// plotResults draws miss rate and mean query latency against K, one above
// the other, and saves them to filename as a PNG image.
func plotResults(filename string, results []benchResult) error {
	missXY := make(plotter.XYs, len(results))
	latXY := make(plotter.XYs, len(results))
	for i, r := range results {
		missXY[i].X = float64(r.K)
		missXY[i].Y = 100 * r.MissRate()
		latXY[i].X = float64(r.K)
		latXY[i].Y = float64(r.Mean.Nanoseconds()) / 1e3
	}

	miss := plot.New()
	miss.Title.Text = "Queries differing from exhaustive search"
	miss.X.Label.Text = "K"
	miss.Y.Label.Text = "miss rate (%)"
	if err := addLinePoints(miss, missXY); err != nil {
		return err
	}

	lat := plot.New()
	lat.Title.Text = "Mean query latency"
	lat.X.Label.Text = "K"
	lat.Y.Label.Text = "latency (µs)"
	if err := addLinePoints(lat, latXY); err != nil {
		return err
	}

	const width, height = 6 * vg.Inch, 8 * vg.Inch
	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Millimeter * 4}
	canvases := plot.Align([][]*plot.Plot{{miss}, {lat}}, tiles, dc)
	miss.Draw(canvases[0][0])
	lat.Draw(canvases[1][0])
	return savePlotImage(filename, img)
}

func addLinePoints(p *plot.Plot, xys plotter.XYs) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	p.Add(line, points, plotter.NewGrid())
	return nil
}

func savePlotImage(filename string, img *vgimg.Canvas) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(fp)
	if err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}
