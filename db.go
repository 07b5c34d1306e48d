package plt

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/bodgit/plt/format"
	"github.com/bodgit/plt/layer"
	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3" // register sqlite3 driver
)

// TextureDB is a catalog of PLT textures. Each texture is stored once,
// keyed by a digest of its contents, along with how many pixels each layer
// covers and a digest of each layer so identical layers can be found across
// textures.
type TextureDB struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Texture is a row in the catalog
type Texture struct {
	ID     int64
	Digest string
	Path   string
	Width  int
	Height int
	Size   int
}

func digest(b []byte) string {
	return fmt.Sprintf("%016X", xxhash.Sum64(b))
}

// NewTextureDB opens, creating if necessary, the catalog in file.
func NewTextureDB(file string) (*TextureDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS texture (id INTEGER PRIMARY KEY NOT NULL, digest TEXT NOT NULL UNIQUE, path TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, size INTEGER NOT NULL, data BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS coverage (texture_id INTEGER NOT NULL, layer INTEGER NOT NULL, pixels INTEGER NOT NULL, digest TEXT NOT NULL, UNIQUE(texture_id, layer), FOREIGN KEY(texture_id) REFERENCES texture(id))"); err != nil {
		db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		enc.Close()
		return nil, err
	}

	return &TextureDB{
		db:  db,
		enc: enc,
		dec: dec,
	}, nil
}

// Close closes the catalog
func (db *TextureDB) Close() error {
	db.enc.Close()
	db.dec.Close()
	return db.db.Close()
}

// AddTexture records the PLT file contents b found at path. m is the
// decoded texture. If the same contents are already in the catalog the
// existing id is returned and nothing changes.
func (db *TextureDB) AddTexture(path string, b []byte, m *format.Image) (int64, bool, error) {
	sum := digest(b)

	var id int64
	switch err := db.db.QueryRow("SELECT id FROM texture WHERE digest = ?", sum).Scan(&id); err {
	case sql.ErrNoRows:
	case nil:
		return id, false, nil
	default:
		return 0, false, err
	}

	planes, err := layer.Split(m)
	if err != nil {
		return 0, false, err
	}

	tx, err := db.db.Begin()
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	// Another worker may have added the same contents since the check above
	result, err := tx.Exec("INSERT OR IGNORE INTO texture (digest, path, width, height, size, data) VALUES (?, ?, ?, ?, ?, ?)", sum, path, m.Width, m.Height, len(b), db.enc.EncodeAll(b, nil))
	if err != nil {
		return 0, false, err
	}
	if n, err := result.RowsAffected(); err != nil || n == 0 {
		if err == nil {
			err = tx.QueryRow("SELECT id FROM texture WHERE digest = ?", sum).Scan(&id)
		}
		return id, false, err
	}
	if id, err = result.LastInsertId(); err != nil {
		return 0, false, err
	}

	for i, p := range planes {
		if _, err := tx.Exec("INSERT INTO coverage (texture_id, layer, pixels, digest) VALUES (?, ?, ?, ?)", id, i, p.Coverage(), digest(p.Pix)); err != nil {
			return 0, false, err
		}
	}

	return id, true, tx.Commit()
}

// FindTextureByDigest returns the original PLT file contents for the
// texture with the given digest, or nil if there isn't one.
func (db *TextureDB) FindTextureByDigest(sum string) ([]byte, error) {
	var data []byte
	switch err := db.db.QueryRow("SELECT data FROM texture WHERE digest = ?", sum).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return db.dec.DecodeAll(data, nil)
	default:
		return nil, err
	}
}

// Textures returns every texture in the catalog ordered by path
func (db *TextureDB) Textures() ([]Texture, error) {
	rows, err := db.db.Query("SELECT id, digest, path, width, height, size FROM texture ORDER BY path, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var textures []Texture
	for rows.Next() {
		var t Texture
		if err := rows.Scan(&t.ID, &t.Digest, &t.Path, &t.Width, &t.Height, &t.Size); err != nil {
			return nil, err
		}
		textures = append(textures, t)
	}

	return textures, rows.Err()
}

// Coverage returns the number of pixels covered by each layer of the
// texture with the given id.
func (db *TextureDB) Coverage(id int64) ([layer.Count]int, error) {
	var coverage [layer.Count]int

	rows, err := db.db.Query("SELECT layer, pixels FROM coverage WHERE texture_id = ?", id)
	if err != nil {
		return coverage, err
	}
	defer rows.Close()

	for rows.Next() {
		var i, n int
		if err := rows.Scan(&i, &n); err != nil {
			return coverage, err
		}
		if i >= 0 && i < layer.Count {
			coverage[i] = n
		}
	}

	return coverage, rows.Err()
}

// FindTexturesWithLayer returns the digests of textures that have a layer
// identical to the given layer digest, excluding empty layers.
func (db *TextureDB) FindTexturesWithLayer(sum string) ([]string, error) {
	rows, err := db.db.Query("SELECT DISTINCT t.digest FROM coverage AS c JOIN texture AS t ON c.texture_id = t.id WHERE c.digest = ? AND c.pixels > 0 ORDER BY t.digest", sum)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digests []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}

	return digests, rows.Err()
}

var errNotFound = errors.New("plt: texture not found")

// Extract writes the texture with the given digest from the catalog to
// file.
func (p *PLT) Extract(sum, file string) error {
	if p.db == nil {
		return errNoDB
	}

	b, err := p.db.FindTextureByDigest(sum)
	if err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("%w: %s", errNotFound, sum)
	}

	return p.writeFile(file, b)
}
