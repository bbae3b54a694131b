package ply

// Transcode decodes every property of dec into buffers of their declared
// types and returns a Writer that re-emits the same schema, comments and
// values in format. dec must not have been decoded yet.
func Transcode(dec *Decoder, format Format) (*Writer, error) {
	s := dec.Schema()
	bufs := make([][]Buffer, len(s.Elements))
	for ei := range s.Elements {
		e := &s.Elements[ei]
		bufs[ei] = make([]Buffer, len(e.Properties))
		for pi, prop := range e.Properties {
			b := NewBuffer(prop.ItemType)
			if _, err := dec.Request(e.Name, []string{prop.Name}, b); err != nil {
				return nil, err
			}
			bufs[ei][pi] = b
		}
	}
	if err := dec.Decode(); err != nil {
		return nil, err
	}

	w := NewWriter(format, dec.opts)
	w.schema.Version = s.Version
	w.schema.Comments = append(w.schema.Comments, s.Comments...)
	w.schema.ObjInfo = append(w.schema.ObjInfo, s.ObjInfo...)
	for ei := range s.Elements {
		e := &s.Elements[ei]
		if err := w.AddElement(e.Name, e.Count); err != nil {
			return nil, err
		}
		for pi, prop := range e.Properties {
			var err error
			if prop.IsList {
				err = w.AddListProperty(e.Name, prop.Name, prop.CountType, prop.ItemType, bufs[ei][pi], 0)
			} else {
				err = w.AddProperties(e.Name, []string{prop.Name}, prop.ItemType, bufs[ei][pi])
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return w, nil
}
