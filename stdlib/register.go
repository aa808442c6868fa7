package stdlib

import (
	"fmt"
	"math/big"

	"canto/diag"
	"canto/registry"
	"canto/rng"
	"canto/values"
)

// Register installs every stdlib builtin named in spec.md section 4.7
// into reg, using r as the RNG source for the transforms that need one
// and reporter as the sink for range warnings such as a clamped transpose.
func Register(reg *registry.Registry, r *rng.Engine, reporter *diag.Reporter) {
	registerCore(reg)
	registerArithmetic(reg)
	registerSequenceTransforms(reg, r, reporter)
}

func arg1Seq(args []values.Value) (values.SequenceData, bool) {
	return values.As[values.SequenceData](args[0], values.Sequence)
}

func registerCore(reg *registry.Registry) {
	reg.Register(&registry.Builtin{
		Name: "print", ParamTypes: []values.Type{values.String}, ReturnType: values.Void,
		Func: func(args []values.Value) (values.Value, error) {
			fmt.Println(args[0].String())
			return values.VoidValue(), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "len", ParamTypes: []values.Type{values.Array}, ReturnType: values.Int,
		Func: func(args []values.Value) (values.Value, error) {
			items, _ := values.As[[]values.Value](args[0], values.Array)
			return values.IntValue(int64(len(items))), nil
		},
	})
	for _, t := range []values.Type{
		values.Int, values.Long, values.Float, values.Double, values.Number,
		values.Bool, values.String, values.Note, values.MusicalNote, values.Chord,
		values.Sequence, values.Semitone, values.Cent,
	} {
		t := t
		reg.Register(&registry.Builtin{
			Name: "str", ParamTypes: []values.Type{t}, ReturnType: values.String,
			Func: func(args []values.Value) (values.Value, error) {
				return values.StringValue(args[0].String()), nil
			},
		})
	}
}

func registerArithmetic(reg *registry.Registry) {
	reg.Register(&registry.Builtin{
		Name: "add", ParamTypes: []values.Type{values.Int, values.Int}, ReturnType: values.Int,
		Func: func(args []values.Value) (values.Value, error) {
			a, _ := values.As[int64](args[0], values.Int)
			b, _ := values.As[int64](args[1], values.Int)
			return values.IntValue(a + b), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "sub", ParamTypes: []values.Type{values.Int, values.Int}, ReturnType: values.Int,
		Func: func(args []values.Value) (values.Value, error) {
			a, _ := values.As[int64](args[0], values.Int)
			b, _ := values.As[int64](args[1], values.Int)
			return values.IntValue(a - b), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "mul", ParamTypes: []values.Type{values.Int, values.Int}, ReturnType: values.Int,
		Func: func(args []values.Value) (values.Value, error) {
			a, _ := values.As[int64](args[0], values.Int)
			b, _ := values.As[int64](args[1], values.Int)
			return values.IntValue(a * b), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "div", ParamTypes: []values.Type{values.Int, values.Int}, ReturnType: values.Int,
		Func: func(args []values.Value) (values.Value, error) {
			a, _ := values.As[int64](args[0], values.Int)
			b, _ := values.As[int64](args[1], values.Int)
			if b == 0 {
				return values.Value{}, fmt.Errorf("division by zero")
			}
			return values.IntValue(a / b), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "add", ParamTypes: []values.Type{values.Number, values.Number}, ReturnType: values.Number,
		Func: func(args []values.Value) (values.Value, error) {
			a, _ := values.As[*big.Int](args[0], values.Number)
			b, _ := values.As[*big.Int](args[1], values.Number)
			return values.NumberValue(new(big.Int).Add(a, b)), nil
		},
	})
}

func registerSequenceTransforms(reg *registry.Registry, r *rng.Engine, reporter *diag.Reporter) {
	reg.Register(&registry.Builtin{
		Name: "transpose", ParamTypes: []values.Type{values.Sequence, values.Semitone}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			st, _ := values.As[int](args[1], values.Semitone)
			return values.SequenceValue(Transpose(seq, st, 0, false, reporter)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "transpose", ParamTypes: []values.Type{values.Sequence, values.Cent}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			c, _ := values.As[float64](args[1], values.Cent)
			return values.SequenceValue(Transpose(seq, 0, c, true, reporter)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "invert", ParamTypes: []values.Type{values.Sequence}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			return values.SequenceValue(Invert(seq)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "retrograde", ParamTypes: []values.Type{values.Sequence}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			return values.SequenceValue(Retrograde(seq)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "augment", ParamTypes: []values.Type{values.Sequence}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			return values.SequenceValue(Augment(seq)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "diminish", ParamTypes: []values.Type{values.Sequence}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			return values.SequenceValue(Diminish(seq)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "repeat", ParamTypes: []values.Type{values.Sequence, values.Int}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			n, _ := values.As[int64](args[1], values.Int)
			return values.SequenceValue(Repeat(seq, int(n), 0, reporter)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "repeat", ParamTypes: []values.Type{values.Sequence, values.Int, values.Semitone}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			n, _ := values.As[int64](args[1], values.Int)
			st, _ := values.As[int](args[2], values.Semitone)
			return values.SequenceValue(Repeat(seq, int(n), st, reporter)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "concat", ParamTypes: []values.Type{values.Sequence, values.Sequence}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			a, _ := arg1Seq(args)
			b, _ := values.As[values.SequenceData](args[1], values.Sequence)
			return values.SequenceValue(Concat(a, b)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "crescendo", ParamTypes: []values.Type{values.Sequence, values.Double, values.Double}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			from, _ := values.As[float64](args[1], values.Double)
			to, _ := values.As[float64](args[2], values.Double)
			return values.SequenceValue(Crescendo(seq, from, to)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "decrescendo", ParamTypes: []values.Type{values.Sequence, values.Double, values.Double}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			from, _ := values.As[float64](args[1], values.Double)
			to, _ := values.As[float64](args[2], values.Double)
			return values.SequenceValue(Decrescendo(seq, from, to)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "swell", ParamTypes: []values.Type{values.Sequence, values.Double, values.Double}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			base, _ := values.As[float64](args[1], values.Double)
			peak, _ := values.As[float64](args[2], values.Double)
			return values.SequenceValue(Swell(seq, base, peak)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "humanize", ParamTypes: []values.Type{values.Sequence, values.Double}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			amount, _ := values.As[float64](args[1], values.Double)
			return values.SequenceValue(Humanize(seq, amount, r)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "trill", ParamTypes: []values.Type{values.Sequence, values.Semitone}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			st, _ := values.As[int](args[1], values.Semitone)
			return values.SequenceValue(Trill(seq, st)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "tremolo", ParamTypes: []values.Type{values.Sequence, values.Int}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			seq, _ := arg1Seq(args)
			n, _ := values.As[int64](args[1], values.Int)
			return values.SequenceValue(Tremolo(seq, int(n))), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "euclidean", ParamTypes: []values.Type{values.Int, values.Int, values.Note}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			hits, _ := values.As[int64](args[0], values.Int)
			steps, _ := values.As[int64](args[1], values.Int)
			noteStr, _ := values.As[string](args[2], values.Note)
			note := noteFromString(noteStr)
			return values.SequenceValue(Euclidean(int(hits), int(steps), note)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "arpeggio", ParamTypes: []values.Type{values.Chord, values.String}, ReturnType: values.Sequence,
		Func: func(args []values.Value) (values.Value, error) {
			chord, _ := values.As[values.ChordData](args[0], values.Chord)
			pattern, _ := values.As[string](args[1], values.String)
			return values.SequenceValue(Arpeggio(chord, pattern)), nil
		},
	})
	reg.Register(&registry.Builtin{
		Name: "resolveNumeral", ParamTypes: []values.Type{values.String, values.String}, ReturnType: values.Chord,
		Func: func(args []values.Value) (values.Value, error) {
			numeral, _ := values.As[string](args[0], values.String)
			key, _ := values.As[string](args[1], values.String)
			chord, ok := ResolveNumeral(numeral, key)
			if !ok {
				return values.Value{}, fmt.Errorf("cannot resolve numeral %q in key %q", numeral, key)
			}
			return values.ChordValue(chord), nil
		},
	})
}

// noteFromString decodes a "C4"-style note string into a MusicalNoteData
// template used as the pitched event in euclidean().
func noteFromString(s string) values.MusicalNoteData {
	if len(s) == 0 {
		return values.MusicalNoteData{Name: 'C', Octave: 4}
	}
	name := s[0]
	i := 1
	alt := 0
	for i < len(s) && (s[i] == '#' || s[i] == 'b') {
		if s[i] == '#' {
			alt++
		} else {
			alt--
		}
		i++
	}
	octave := 4
	if i < len(s) {
		v := 0
		neg := false
		if s[i] == '-' {
			neg = true
			i++
		}
		for ; i < len(s); i++ {
			v = v*10 + int(s[i]-'0')
		}
		if neg {
			v = -v
		}
		octave = v
	}
	return values.MusicalNoteData{Name: name, Octave: octave, Alteration: alt}
}
