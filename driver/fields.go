package driver

import (
	"math"

	"github.com/sarchlab/oceandist/decomp"
	"github.com/sarchlab/oceandist/field"
)

var (
	tempDesc = decomp.MustDescribeField("temp", decomp.XT, decomp.YT, decomp.ZT)
	kbotDesc = decomp.MustDescribeField("kbot", decomp.XT, decomp.YT)
	dxtDesc  = decomp.MustDescribeField("dxt", decomp.XT)
	dytDesc  = decomp.MustDescribeField("dyt", decomp.YT)
	ztDesc   = decomp.MustDescribeField("zt", decomp.ZT)
)

// fieldSet holds the fields of the model state.
type fieldSet struct {
	Temp *field.Field
	Kbot *field.Field
	DXT  *field.Field
	DYT  *field.Field
	ZT   *field.Field
}

type fieldEntry struct {
	f    **field.Field
	desc decomp.FieldDesc
}

// entries lists the fields in a fixed order, so that the entries of two sets
// line up by index.
func (s *fieldSet) entries() []fieldEntry {
	return []fieldEntry{
		{&s.Temp, tempDesc},
		{&s.Kbot, kbotDesc},
		{&s.DXT, dxtDesc},
		{&s.DYT, dytDesc},
		{&s.ZT, ztDesc},
	}
}

func (s *fieldSet) each(fn func(f **field.Field, desc decomp.FieldDesc) error) error {
	for _, e := range s.entries() {
		if err := fn(e.f, e.desc); err != nil {
			return err
		}
	}

	return nil
}

// globalFields creates the initial state of the whole domain, outer halo
// included. Columns on the diagonal bands (i+j)%7 == 0 are land.
func globalFields(d *decomp.Decomposition, nz int) *fieldSet {
	gx, gy := d.NX+2*decomp.Halo, d.NY+2*decomp.Halo

	s := &fieldSet{
		Temp: field.New(gx, gy, nz),
		Kbot: field.New(gx, gy),
		DXT:  field.New(gx),
		DYT:  field.New(gy),
		ZT:   field.New(nz),
	}

	for i := 0; i < gx; i++ {
		s.DXT.Set(1e3+float64(i), i)

		for j := 0; j < gy; j++ {
			ks := -1
			if (i+j)%7 != 0 {
				ks = (i * j) % min(3, nz)
			}
			s.Kbot.Set(float64(ks), i, j)

			for k := 0; k < nz; k++ {
				v := 4 + float64(k) + math.Sin(0.3*float64(i))*math.Cos(0.2*float64(j))
				s.Temp.Set(v, i, j, k)
			}
		}
	}

	for j := 0; j < gy; j++ {
		s.DYT.Set(2e3+float64(j), j)
	}

	for k := 0; k < nz; k++ {
		s.ZT.Set(-10*float64(nz-k)+5, k)
	}

	return s
}

// localPlaceholders creates the fields that give the non-root ranks the
// local shapes to scatter into.
func localPlaceholders(d *decomp.Decomposition, nz int) *fieldSet {
	local := func(desc decomp.FieldDesc, shape ...int) *field.Field {
		return field.New(d.LocalShape(shape, desc.Grid)...)
	}

	return &fieldSet{
		Temp: local(tempDesc, 0, 0, nz),
		Kbot: local(kbotDesc, 0, 0),
		DXT:  local(dxtDesc, 0),
		DYT:  local(dytDesc, 0),
		ZT:   field.New(nz),
	}
}
