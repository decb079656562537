package flux

import (
	"fmt"

	"github.com/banshee-data/fluxpro/internal/blank"
	"github.com/banshee-data/fluxpro/internal/config"
	"github.com/banshee-data/fluxpro/internal/gas"
	"github.com/banshee-data/fluxpro/internal/monitoring"
	"github.com/banshee-data/fluxpro/internal/standardize"
	"github.com/banshee-data/fluxpro/internal/table"
)

// Pipeline is the full processing chain for one configuration. It holds no
// per-run state and may be reused.
type Pipeline struct {
	standardizer *standardize.Standardizer
	frame        Stage[*table.Frame]
	records      Stage[[]table.Record]
}

// New validates cfg and builds the stages. gases is shared read-only.
func New(cfg *config.Config, gases *gas.Table) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	handler, err := blank.New(cfg.Blank.Mode, cfg.Blank.Index)
	if err != nil {
		return nil, err
	}

	schedule := Schedule{
		TotalCycles:      cfg.Samples.TotalCycles,
		SamplesPerCycle:  cfg.Samples.SamplesPerCycle,
		MinutesPerSample: cfg.Samples.MinutesPerSample,
	}
	chamber := Chamber{
		FlowRate:        cfg.Flux.FlowRate,
		SoilSurfaceArea: cfg.Flux.SoilSurfaceArea,
	}

	return &Pipeline{
		standardizer: standardize.New(gases),
		frame:        Chain(Label(schedule), Trim(cfg.Samples.DiscardMinutes)),
		records:      Chain[[]table.Record](ComputeFlux(gases, chamber), handler.Run, Aggregate),
	}, nil
}

// RunRecords processes raw into aggregated long records.
func (p *Pipeline) RunRecords(raw *table.Raw) ([]table.Record, error) {
	frame, err := p.standardizer.Run(raw)
	if err != nil {
		return nil, err
	}
	frame, err = p.frame(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to label readings: %w", err)
	}
	monitoring.Logf("%d readings of %d gases kept after trimming", len(frame.Rows), len(frame.Gases))

	records, err := p.records(Unpivot(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to compute flux: %w", err)
	}
	return records, nil
}

// Run processes raw into the wide result table.
func (p *Pipeline) Run(raw *table.Raw) (*table.Wide, error) {
	records, err := p.RunRecords(raw)
	if err != nil {
		return nil, err
	}
	return Reshape(records), nil
}
