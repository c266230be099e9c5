package index

import (
	"github.com/grailbio/base/errors"
)

// IDMap maps between the driver's internal small-integer subject ids and
// external subject-id strings, used only when RunConfig.UseSubjectIDs is
// set. It is built once from the same reference dictionary as Store and is
// immutable thereafter.
type IDMap struct {
	idToName map[int]string
	nameToID map[string]int
}

// NewIDMap builds an IDMap from a Store, one entry per subject, using the
// subject's name as its external id.
func NewIDMap(store *Store) *IDMap {
	m := &IDMap{
		idToName: make(map[int]string, store.NumSubjects()),
		nameToID: make(map[string]int, store.NumSubjects()),
	}
	for i := 0; i < store.NumSubjects(); i++ {
		name, _ := store.Name(i)
		m.idToName[i] = name
		m.nameToID[name] = i
	}
	return m
}

// ToName resolves an internal subject id to its external name.
func (m *IDMap) ToName(id int) (string, error) {
	name, ok := m.idToName[id]
	if !ok {
		return "", errors.E("idmap: unknown subject id", id)
	}
	return name, nil
}

// ToID resolves an external subject name to its internal id.
func (m *IDMap) ToID(name string) (int, error) {
	id, ok := m.nameToID[name]
	if !ok {
		return 0, errors.E("idmap: unknown subject name", name)
	}
	return id, nil
}
