package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/listing/usecase"
)

// maxBodyBytes bounds a request body: every allowed upload plus form overhead.
const maxBodyBytes = usecase.MaxUploadFiles*usecase.MaxUploadBytes + 1<<20

var errBodyTooLarge = errors.New("request body too large")

// fields is a loosely-typed request body. JSON bodies keep their native types;
// form bodies hold strings, so every accessor coerces.
type fields map[string]interface{}

// readBody decodes a JSON, urlencoded or multipart body. Files under the "images"
// field are returned as uploads.
func readBody(w http.ResponseWriter, r *http.Request) (fields, []usecase.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, nil, bodyError(err)
		}
		f := formFields(r.MultipartForm.Value)
		var uploads []usecase.Upload
		for _, fh := range r.MultipartForm.File["images"] {
			file, err := fh.Open()
			if err != nil {
				return nil, nil, err
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return nil, nil, bodyError(err)
			}
			uploads = append(uploads, usecase.Upload{
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
		return f, uploads, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, nil, bodyError(err)
		}
		return formFields(r.PostForm), nil, nil
	default:
		f := fields{}
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, bodyError(err)
		}
		return f, nil, nil
	}
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errBodyTooLarge
	}
	return &domain.RuleError{Message: "Invalid request body"}
}

func formFields(values map[string][]string) fields {
	f := fields{}
	for k, vs := range values {
		if len(vs) == 0 {
			continue
		}
		if k == "tags" || k == "images" {
			list := make([]interface{}, 0, len(vs))
			for _, v := range vs {
				list = append(list, v)
			}
			f[k] = list
			continue
		}
		f[k] = vs[0]
	}
	return f
}

func (f fields) has(k string) bool {
	_, ok := f[k]
	return ok
}

func (f fields) str(k string) (string, bool) {
	switch v := f[k].(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// num reports the value and whether it was a usable number.
func (f fields) num(k string) (float64, bool) {
	switch v := f[k].(type) {
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}
	return 0, false
}

func (f fields) boolean(k string) (bool, bool) {
	switch v := f[k].(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "on", "yes":
			return true, true
		case "false", "0", "off", "no", "":
			return false, true
		}
	}
	return false, false
}

// list accepts a JSON array, repeated form values, or one comma-separated string.
func (f fields) list(k string) ([]string, bool) {
	switch v := f[k].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, strings.Split(s, ",")...)
			}
		}
		return out, true
	case string:
		return strings.Split(v, ","), true
	}
	return nil, false
}

func (f fields) strPtr(k string) *string {
	if s, ok := f.str(k); ok {
		return &s
	}
	return nil
}

// toDraft builds a creation draft. Unusable numbers are left nil so the draft's own
// validation reports them. Any owner field is ignored.
func (f fields) toDraft() (domain.Draft, []string) {
	d := domain.Draft{}
	d.Name, _ = f.str("name")
	s, _ := f.str("species")
	d.Species = domain.Species(s)
	d.Breed, _ = f.str("breed")
	if n, ok := f.num("age"); ok {
		d.Age = &n
	}
	s, _ = f.str("ageUnit")
	d.AgeUnit = domain.AgeUnit(s)
	s, _ = f.str("gender")
	d.Gender = domain.Gender(s)
	if n, ok := f.num("price"); ok {
		d.Price = &n
	}
	d.Description, _ = f.str("description")
	d.Location, _ = f.str("location")
	if f.has("isAvailable") {
		if b, ok := f.boolean("isAvailable"); ok {
			d.IsAvailable = &b
		}
	}
	d.IsVaccinated, _ = f.boolean("isVaccinated")
	d.IsNeutered, _ = f.boolean("isNeutered")
	s, _ = f.str("healthStatus")
	d.HealthStatus = domain.HealthStatus(s)
	s, _ = f.str("temperament")
	d.Temperament = domain.Temperament(s)
	d.Tags, _ = f.list("tags")
	refs, _ := f.list("images")
	return d, refs
}

// toPatch builds an update patch from the supplied keys only.
func (f fields) toPatch() (domain.Patch, error) {
	p := domain.Patch{}
	v := &domain.ValidationError{}

	p.Name = f.strPtr("name")
	p.Breed = f.strPtr("breed")
	p.Description = f.strPtr("description")
	p.Location = f.strPtr("location")
	if s, ok := f.str("species"); ok {
		sp := domain.Species(s)
		p.Species = &sp
	}
	if s, ok := f.str("ageUnit"); ok {
		u := domain.AgeUnit(s)
		p.AgeUnit = &u
	}
	if s, ok := f.str("gender"); ok {
		g := domain.Gender(s)
		p.Gender = &g
	}
	if s, ok := f.str("healthStatus"); ok {
		h := domain.HealthStatus(s)
		p.HealthStatus = &h
	}
	if s, ok := f.str("temperament"); ok {
		t := domain.Temperament(s)
		p.Temperament = &t
	}
	for _, k := range []struct {
		key string
		dst **float64
	}{{"age", &p.Age}, {"price", &p.Price}} {
		if !f.has(k.key) {
			continue
		}
		n, ok := f.num(k.key)
		if !ok {
			v.Add(k.key, strings.ToUpper(k.key[:1])+k.key[1:]+" must be a number")
			continue
		}
		*k.dst = &n
	}
	for _, k := range []struct {
		key string
		dst **bool
	}{{"isAvailable", &p.IsAvailable}, {"isVaccinated", &p.IsVaccinated}, {"isNeutered", &p.IsNeutered}} {
		if !f.has(k.key) {
			continue
		}
		b, ok := f.boolean(k.key)
		if !ok {
			v.Add(k.key, k.key+" must be a boolean")
			continue
		}
		*k.dst = &b
	}
	if tags, ok := f.list("tags"); ok {
		p.Tags, p.TagsSet = tags, true
	}
	if refs, ok := f.list("images"); ok {
		p.Images = refs
	}
	return p, v.OrNil()
}
