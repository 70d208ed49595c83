package smallmap

type Stats struct {
	Size           int
	InlineCapacity int
	Capacity       int
	Spilled        bool
}
