package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Canonical ingredient dictionary
CREATE TABLE IF NOT EXISTS ingredients (
    ingredient_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    display_name_singular TEXT NOT NULL,
    display_name_plural TEXT NOT NULL,
    shopping_unit TEXT NOT NULL,
    category TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- One namespace for canonical names AND aliases: the primary key makes an
-- alias colliding with another canonical name (or alias) a constraint
-- violation at the store level.
CREATE TABLE IF NOT EXISTS ingredient_names (
    name TEXT PRIMARY KEY,
    ingredient_id INTEGER NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('canonical', 'alias')),
    FOREIGN KEY (ingredient_id) REFERENCES ingredients(ingredient_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_ingredient_names_ingredient ON ingredient_names(ingredient_id);

-- Recipes
CREATE TABLE IF NOT EXISTS recipes (
    recipe_id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    description TEXT,
    servings INTEGER,
    recipe_type TEXT NOT NULL,
    protein_type TEXT NOT NULL,
    image_url TEXT,
    total_time_seconds INTEGER,
    oven_temp_celsius INTEGER,
    original_author TEXT,
    source_url TEXT UNIQUE,
    is_imported BOOLEAN NOT NULL DEFAULT 0,
    language TEXT,
    created_by TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recipes_created_by ON recipes(created_by);

-- Ingredient line items. display_order carries the extraction reference id
-- and is the stable join key between ingredients and instructions within a
-- recipe.
CREATE TABLE IF NOT EXISTS recipe_ingredients (
    recipe_ingredient_id INTEGER PRIMARY KEY AUTOINCREMENT,
    recipe_id INTEGER NOT NULL,
    display_order INTEGER NOT NULL,
    text TEXT NOT NULL,
    note TEXT,
    quantity REAL,
    unit TEXT,
    ingredient_id INTEGER NOT NULL,
    FOREIGN KEY (recipe_id) REFERENCES recipes(recipe_id) ON DELETE CASCADE,
    FOREIGN KEY (ingredient_id) REFERENCES ingredients(ingredient_id),
    UNIQUE(recipe_id, display_order)
);

CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe ON recipe_ingredients(recipe_id);

-- Instruction steps
CREATE TABLE IF NOT EXISTS recipe_instructions (
    instruction_id INTEGER PRIMARY KEY AUTOINCREMENT,
    recipe_id INTEGER NOT NULL,
    step INTEGER NOT NULL,
    text TEXT NOT NULL,
    FOREIGN KEY (recipe_id) REFERENCES recipes(recipe_id) ON DELETE CASCADE,
    UNIQUE(recipe_id, step)
);

CREATE INDEX IF NOT EXISTS idx_recipe_instructions_recipe ON recipe_instructions(recipe_id);

-- Ingredients first used in an instruction step
CREATE TABLE IF NOT EXISTS instruction_ingredients (
    instruction_id INTEGER NOT NULL,
    recipe_ingredient_id INTEGER NOT NULL,
    PRIMARY KEY (instruction_id, recipe_ingredient_id),
    FOREIGN KEY (instruction_id) REFERENCES recipe_instructions(instruction_id) ON DELETE CASCADE,
    FOREIGN KEY (recipe_ingredient_id) REFERENCES recipe_ingredients(recipe_ingredient_id) ON DELETE CASCADE
);
`
