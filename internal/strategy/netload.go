package strategy

const NetLoadName = "net_load"

// NetLoad passes the residual load straight to the battery: whatever PV does
// not cover is discharged, any PV surplus is charged.
type NetLoad struct{}

func (NetLoad) Name() string { return NetLoadName }

func (NetLoad) Decide(ctx Context) float64 {
	return ctx.LoadW - ctx.PVW
}
